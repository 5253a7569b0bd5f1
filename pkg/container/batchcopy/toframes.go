// Copyright 2024 Quiver Data
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package batchcopy transposes between columns (DenseArray) and rows
// (frames). A copier is configured with mappings, started, then driven
// batch by batch over one logical stream; it carries a cursor and is
// not internally synchronized. Sharded parallel runs use one copier
// per shard, see RunSharded.
package batchcopy

import (
	"fmt"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/array"
	"github.com/quiverdata/quiver/pkg/container/frame"
	"github.com/quiverdata/quiver/pkg/container/types"
)

const noRowCount = -1

// ToFramesCopier scatters columns into per-row frames. All mapped
// source arrays must agree on length; the mapping set freezes at
// Start.
type ToFramesCopier struct {
	rowCount int
	cursor   int
	started  bool
	mappings []func(frames []frame.Ptr, start int)
}

func NewToFramesCopier() *ToFramesCopier {
	return &ToFramesCopier{rowCount: noRowCount}
}

// RowCount returns the agreed source length, or -1 before the first
// mapping.
func (c *ToFramesCopier) RowCount() int {
	return c.rowCount
}

func (c *ToFramesCopier) addMapping(length int, fn func([]frame.Ptr, int)) error {
	if c.started {
		return qerr.NewPrecondition("can't add new mappings when started")
	}
	if c.rowCount == noRowCount {
		c.rowCount = length
	} else if c.rowCount != length {
		return qerr.NewInvalidArg("array length", fmt.Sprintf("%d vs %d", length, c.rowCount))
	}
	c.mappings = append(c.mappings, fn)
	return nil
}

// MapToOptional routes a column into an optional slot, carrying the
// presence bit with the value.
func MapToOptional[T any](c *ToFramesCopier, src array.DenseArray[T], dst frame.Slot[types.Optional[T]]) error {
	return c.addMapping(src.Len(), func(frames []frame.Ptr, start int) {
		vals := src.Values()
		bm, bitOff := src.PresentBitmap()
		if bm == nil {
			for i, f := range frames {
				frame.Set(f, dst, types.NewOptional(vals[start+i]))
			}
			return
		}
		// Walk the bitmap in whole-word runs; uniform words skip the
		// per-bit test.
		for i := 0; i < len(frames); {
			bit := uint64(start + i + bitOff)
			bitIdx := uint(bit & 63)
			run := 64 - int(bitIdx)
			if rest := len(frames) - i; run > rest {
				run = rest
			}
			word := bm.Word(int(bit >> 6))
			switch word {
			case ^uint64(0):
				for j := 0; j < run; j++ {
					frame.Set(frames[i+j], dst, types.NewOptional(vals[start+i+j]))
				}
			case 0:
				for j := 0; j < run; j++ {
					frame.Set(frames[i+j], dst, types.Empty[T]())
				}
			default:
				for j := 0; j < run; j++ {
					if word&(1<<(bitIdx+uint(j))) != 0 {
						frame.Set(frames[i+j], dst, types.NewOptional(vals[start+i+j]))
					} else {
						frame.Set(frames[i+j], dst, types.Empty[T]())
					}
				}
			}
			i += run
		}
	})
}

// MapToScalar routes a column into a plain slot. Presence is dropped;
// absent rows write the (unspecified) value payload.
func MapToScalar[T any](c *ToFramesCopier, src array.DenseArray[T], dst frame.Slot[T]) error {
	return c.addMapping(src.Len(), func(frames []frame.Ptr, start int) {
		vals := src.Values()
		for i, f := range frames {
			frame.Set(f, dst, vals[start+i])
		}
	})
}

// Start freezes the mapping set and arms the cursor.
func (c *ToFramesCopier) Start() error {
	if c.started {
		return qerr.NewPrecondition("copier already started")
	}
	c.started = true
	if c.rowCount == noRowCount {
		c.rowCount = 0
	}
	return nil
}

// CopyNextBatch writes the next len(frames) rows, one frame per row,
// and advances the cursor.
func (c *ToFramesCopier) CopyNextBatch(frames []frame.Ptr) error {
	if !c.started {
		return qerr.NewPrecondition("copier not started")
	}
	if c.cursor+len(frames) > c.rowCount {
		return qerr.NewInvalidArg("batch size",
			fmt.Sprintf("%d rows at cursor %d overrun %d source rows", len(frames), c.cursor, c.rowCount))
	}
	for _, fn := range c.mappings {
		fn(frames, c.cursor)
	}
	c.cursor += len(frames)
	return nil
}
