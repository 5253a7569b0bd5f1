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

package batchcopy

import (
	"fmt"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/array"
	"github.com/quiverdata/quiver/pkg/container/buffer"
	"github.com/quiverdata/quiver/pkg/container/frame"
	"github.com/quiverdata/quiver/pkg/container/types"
)

type fromMapping struct {
	start    func(rowCount int) error
	copyRows func(frames []frame.ConstPtr, start int)
	finalize func(out frame.Ptr)
}

// FromFramesCopier gathers per-row frames into columns. Builders are
// pre-sized at Start through the injected buffer factory; the built
// arrays reach the output frame only at Finalize, which runs exactly
// once.
type FromFramesCopier struct {
	factory   buffer.Factory
	rowCount  int
	cursor    int
	started   bool
	finalized bool
	mappings  []fromMapping
}

func NewFromFramesCopier(f buffer.Factory) *FromFramesCopier {
	return &FromFramesCopier{factory: f}
}

func (c *FromFramesCopier) addMapping(m fromMapping) error {
	if c.started {
		return qerr.NewPrecondition("can't add new mappings when started")
	}
	c.mappings = append(c.mappings, m)
	return nil
}

// MapFromOptional gathers an optional slot into a column, reading
// value and presence in one pass per row.
func MapFromOptional[T any](c *FromFramesCopier, src frame.Slot[types.Optional[T]], dst frame.Slot[array.DenseArray[T]]) error {
	var b *array.Builder[T]
	return c.addMapping(fromMapping{
		start: func(rowCount int) error {
			var err error
			b, err = array.NewBuilderWithFactory[T](rowCount, c.factory)
			return err
		},
		copyRows: func(frames []frame.ConstPtr, start int) {
			for i, f := range frames {
				b.SetOptional(start+i, frame.Get(f, src))
			}
		},
		finalize: func(out frame.Ptr) {
			frame.Set(out, dst, b.Build())
		},
	})
}

// MapFromScalar gathers a plain slot into a fully-present column.
func MapFromScalar[T any](c *FromFramesCopier, src frame.Slot[T], dst frame.Slot[array.DenseArray[T]]) error {
	var b *array.Builder[T]
	return c.addMapping(fromMapping{
		start: func(rowCount int) error {
			var err error
			b, err = array.NewBuilderWithFactory[T](rowCount, c.factory)
			return err
		},
		copyRows: func(frames []frame.ConstPtr, start int) {
			vals := b.Values()
			for i, f := range frames {
				vals[start+i] = frame.Get(f, src)
			}
			b.SetRangePresent(start, start+len(frames))
		},
		finalize: func(out frame.Ptr) {
			frame.Set(out, dst, b.Build())
		},
	})
}

// Start freezes the mapping set and pre-sizes one builder per mapping
// for rowCount rows.
func (c *FromFramesCopier) Start(rowCount int) error {
	if c.started {
		return qerr.NewPrecondition("copier already started")
	}
	if rowCount < 0 {
		return qerr.NewInvalidArg("row count", rowCount)
	}
	for _, m := range c.mappings {
		if err := m.start(rowCount); err != nil {
			return err
		}
	}
	c.started = true
	c.rowCount = rowCount
	return nil
}

// CopyNextBatch appends the next len(frames) rows, one frame per row.
func (c *FromFramesCopier) CopyNextBatch(frames []frame.ConstPtr) error {
	if !c.started {
		return qerr.NewPrecondition("copier not started")
	}
	if c.cursor+len(frames) > c.rowCount {
		return qerr.NewInvalidArg("batch size",
			fmt.Sprintf("%d rows at cursor %d overrun %d output rows", len(frames), c.cursor, c.rowCount))
	}
	for _, m := range c.mappings {
		m.copyRows(frames, c.cursor)
	}
	c.cursor += len(frames)
	return nil
}

// Finalize builds every column and writes it to its output slot. The
// output frame is untouched before this call.
func (c *FromFramesCopier) Finalize(out frame.Ptr) error {
	if c.finalized {
		return qerr.NewPrecondition("finalize can be called only once")
	}
	if !c.started {
		return qerr.NewPrecondition("copier not started")
	}
	if c.cursor != c.rowCount {
		return qerr.NewPrecondition("copied %d of %d rows", c.cursor, c.rowCount)
	}
	c.finalized = true
	for _, m := range c.mappings {
		m.finalize(out)
	}
	return nil
}
