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

// Package array implements the columnar containers: DenseArray, a
// flat value buffer plus an optional presence bitmap, and the sparse
// Array, which stores only the present rows. A nil presence bitmap
// means every row is present; a missing row's value content is
// unspecified.
package array

import (
	"fmt"
	"strings"

	"github.com/quiverdata/quiver/pkg/common/bitmap"
	"github.com/quiverdata/quiver/pkg/container/buffer"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// DenseArray is one column of optionally-present values. Immutable
// once built; Slice shares the backing buffer and bitmap.
type DenseArray[T any] struct {
	values    buffer.Buffer[T]
	present   *bitmap.Bitmap
	bitOffset int
}

// FromBuffer wraps a fully-present buffer.
func FromBuffer[T any](values buffer.Buffer[T]) DenseArray[T] {
	return DenseArray[T]{values: values}
}

// FromValues wraps a heap slice with every row present.
func FromValues[T any](values []T) DenseArray[T] {
	return DenseArray[T]{values: buffer.Wrap(values)}
}

// FromParts assembles an array from its raw components. The bitmap,
// if non-nil, must cover at least Len bits starting at bitOffset.
func FromParts[T any](values buffer.Buffer[T], present *bitmap.Bitmap, bitOffset int) DenseArray[T] {
	return DenseArray[T]{values: values, present: present, bitOffset: bitOffset}
}

// Create copies the given optionals into a fresh, exactly-sized
// array. It normalizes, it is not a view.
func Create[T any](opts ...types.Optional[T]) DenseArray[T] {
	b := NewBuilder[T](len(opts))
	for i, o := range opts {
		if o.Present {
			b.Set(i, o.Value)
		}
	}
	return b.Build()
}

func (a DenseArray[T]) Len() int {
	return a.values.Len()
}

// Present reports whether row i is present. No bounds check: the
// caller owns the contract.
func (a DenseArray[T]) Present(i int) bool {
	if a.present == nil {
		return true
	}
	return a.present.Contains(uint64(i + a.bitOffset))
}

// Value returns row i's value; unspecified when the row is absent.
func (a DenseArray[T]) Value(i int) T {
	return a.values.At(i)
}

func (a DenseArray[T]) Get(i int) types.Optional[T] {
	if !a.Present(i) {
		return types.Empty[T]()
	}
	return types.NewOptional(a.values.At(i))
}

// AllPresent reports whether no row is absent.
func (a DenseArray[T]) AllPresent() bool {
	return a.present == nil || a.CountPresent() == a.Len()
}

func (a DenseArray[T]) CountPresent() int {
	if a.present == nil {
		return a.Len()
	}
	cnt := 0
	for i := 0; i < a.Len(); i++ {
		if a.present.Contains(uint64(i + a.bitOffset)) {
			cnt++
		}
	}
	return cnt
}

// PresentBitmap exposes the raw bitmap (nil = all present) and the
// bit offset of row 0. The batch copiers walk it word by word.
func (a DenseArray[T]) PresentBitmap() (*bitmap.Bitmap, int) {
	return a.present, a.bitOffset
}

// Values exposes the raw value range. Read-only by contract.
func (a DenseArray[T]) Values() []T {
	return a.values.Values()
}

// Buffer returns the backing buffer.
func (a DenseArray[T]) Buffer() buffer.Buffer[T] {
	return a.values
}

// Slice returns the zero-copy window [i, j): same buffer, same
// bitmap, adjusted bit offset.
func (a DenseArray[T]) Slice(i, j int) DenseArray[T] {
	return DenseArray[T]{
		values:    a.values.Slice(i, j),
		present:   a.present,
		bitOffset: a.bitOffset + i,
	}
}

const displayLimit = 10

// String renders the column for logs and debugging: missing rows as
// NA, at most displayLimit visible rows, then a continuation marker
// and the size.
func (a DenseArray[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	n := a.Len()
	shown := n
	if shown > displayLimit {
		shown = displayLimit
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a.Present(i) {
			fmt.Fprintf(&sb, "%v", a.values.At(i))
		} else {
			sb.WriteString("NA")
		}
	}
	if n > shown {
		sb.WriteString(", ...")
	}
	fmt.Fprintf(&sb, "] size=%d", n)
	return sb.String()
}

// Equal compares two arrays element-wise; absent rows are equal
// regardless of their value payload.
func Equal[T comparable](a, b DenseArray[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !types.OptionalEqual(a.Get(i), b.Get(i)) {
			return false
		}
	}
	return true
}

func registerArrayQType[T any]() {
	elem := types.GetQType[T]()
	types.RegisterContainerQType[DenseArray[T]](
		types.T_densearray, "dense_array["+elem.Name()+"]", elem)
}

func init() {
	registerArrayQType[types.Unit]()
	registerArrayQType[bool]()
	registerArrayQType[int8]()
	registerArrayQType[int16]()
	registerArrayQType[int32]()
	registerArrayQType[int64]()
	registerArrayQType[uint8]()
	registerArrayQType[uint16]()
	registerArrayQType[uint32]()
	registerArrayQType[uint64]()
	registerArrayQType[float32]()
	registerArrayQType[float64]()
	registerArrayQType[string]()
}
