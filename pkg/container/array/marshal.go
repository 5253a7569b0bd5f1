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

package array

import (
	"bytes"
	"unsafe"

	"github.com/quiverdata/quiver/pkg/common/bitmap"
	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/buffer"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// Marshal encodes a fixed-size-element array: length, value image,
// bitmap (empty for all-present). Frame layouts are never serialized;
// arrays are the unit that crosses process boundaries.
func Marshal[T types.FixedSizeT](a DenseArray[T]) ([]byte, error) {
	var buf bytes.Buffer
	length := int64(a.Len())
	buf.Write(types.EncodeInt64(&length))

	vals := types.EncodeSlice(a.Values())
	vlen := uint64(len(vals))
	buf.Write(types.EncodeUint64(&vlen))
	buf.Write(vals)

	var bm []byte
	present, bitOffset := a.PresentBitmap()
	if present != nil {
		// Rebase so the serialized form always starts at bit 0.
		rebased := bitmap.New(a.Len())
		for i := 0; i < a.Len(); i++ {
			if present.Contains(uint64(i + bitOffset)) {
				rebased.Add(uint64(i))
			}
		}
		bm = rebased.Marshal()
	}
	blen := uint64(len(bm))
	buf.Write(types.EncodeUint64(&blen))
	buf.Write(bm)
	return buf.Bytes(), nil
}

// Unmarshal decodes a Marshal image. The value image is copied, not
// aliased.
func Unmarshal[T types.FixedSizeT](data []byte) (DenseArray[T], error) {
	if len(data) < 16 {
		return DenseArray[T]{}, qerr.NewInvalidInput("array image truncated: %d bytes", len(data))
	}
	length := types.DecodeInt64(data[:8])
	data = data[8:]

	vlen := types.DecodeUint64(data[:8])
	data = data[8:]
	if uint64(len(data)) < vlen {
		return DenseArray[T]{}, qerr.NewInvalidInput("array value image truncated")
	}
	if elem := uint64(unsafe.Sizeof(*new(T))); vlen%elem != 0 {
		return DenseArray[T]{}, qerr.NewInvalidInput(
			"array value image of %d bytes is not a whole number of %d-byte elements", vlen, elem)
	}
	raw := make([]byte, vlen)
	copy(raw, data[:vlen])
	data = data[vlen:]
	vals := types.DecodeSlice[T](raw)
	if int64(len(vals)) != length {
		return DenseArray[T]{}, qerr.NewInvalidInput(
			"array image length %d does not match %d values", length, len(vals))
	}

	if len(data) < 8 {
		return DenseArray[T]{}, qerr.NewInvalidInput("array bitmap image truncated")
	}
	blen := types.DecodeUint64(data[:8])
	data = data[8:]
	var present *bitmap.Bitmap
	if blen > 0 {
		if uint64(len(data)) < blen {
			return DenseArray[T]{}, qerr.NewInvalidInput("array bitmap image truncated")
		}
		// A bitmap image is a 16-byte header plus the word payload it
		// declares at bytes 8..16.
		if blen < 16 {
			return DenseArray[T]{}, qerr.NewInvalidInput("array bitmap image malformed: %d bytes", blen)
		}
		if words := types.DecodeUint64(data[8:16]); words != blen-16 || words%8 != 0 {
			return DenseArray[T]{}, qerr.NewInvalidInput(
				"array bitmap image malformed: %d-byte payload in a %d-byte image", words, blen)
		}
		present = new(bitmap.Bitmap)
		present.Unmarshal(data[:blen])
	}
	return FromParts(buffer.Wrap(vals), present, 0), nil
}
