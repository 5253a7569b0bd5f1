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
	"github.com/quiverdata/quiver/pkg/common/bitmap"
	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/buffer"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// Builder constructs a DenseArray of a fixed capacity. Set marks a
// row present; rows never set stay absent. Build finalizes into an
// immutable array, dropping the bitmap when every row is present.
type Builder[T any] struct {
	buf     buffer.Buffer[T]
	values  []T
	present *bitmap.Bitmap
	next    int
	built   bool
}

// NewBuilder pre-sizes a heap-backed builder for capacity rows.
func NewBuilder[T any](capacity int) *Builder[T] {
	b, err := NewBuilderWithFactory[T](capacity, buffer.HeapFactory{})
	if err != nil {
		// Heap allocation does not fail.
		panic(err)
	}
	return b
}

// NewBuilderWithFactory pre-sizes the value buffer through the given
// factory. The presence bitmap is always heap-allocated: it is small
// and its lifetime follows the array, not the arena.
func NewBuilderWithFactory[T any](capacity int, f buffer.Factory) (*Builder[T], error) {
	if capacity < 0 {
		return nil, qerr.NewInvalidArg("builder capacity", capacity)
	}
	buf, values, err := buffer.Alloc[T](f, capacity)
	if err != nil {
		return nil, err
	}
	return &Builder[T]{
		buf:     buf,
		values:  values,
		present: bitmap.New(capacity),
	}, nil
}

func (b *Builder[T]) Capacity() int {
	return len(b.values)
}

// Set stores v at row i and marks it present.
func (b *Builder[T]) Set(i int, v T) {
	b.values[i] = v
	b.present.Add(uint64(i))
}

// SetOptional stores an optional: absent values clear the row.
func (b *Builder[T]) SetOptional(i int, o types.Optional[T]) {
	if o.Present {
		b.Set(i, o.Value)
		return
	}
	b.Unset(i)
}

// Append stores v at the cursor row and advances the cursor. Mixing
// Append with explicit Set indices is the caller's bookkeeping.
func (b *Builder[T]) Append(v T) {
	b.Set(b.next, v)
	b.next++
}

// AppendNull advances the cursor leaving the row absent.
func (b *Builder[T]) AppendNull() {
	b.next++
}

// Unset marks row i absent again.
func (b *Builder[T]) Unset(i int) {
	b.present.Remove(uint64(i))
}

// SetRangePresent marks rows [start, end) present without touching
// their values; the copiers use it for fully-present runs after bulk
// value copies.
func (b *Builder[T]) SetRangePresent(start, end int) {
	b.present.AddRange(uint64(start), uint64(end))
}

// Values exposes the value region for bulk writes; rows written this
// way still need their presence marked.
func (b *Builder[T]) Values() []T {
	return b.values
}

// Build finalizes the array. The builder is consumed; a second Build
// panics. An all-present bitmap is normalized to nil.
func (b *Builder[T]) Build() DenseArray[T] {
	if b.built {
		panic(qerr.NewPrecondition("array builder already consumed"))
	}
	b.built = true
	present := b.present
	if present.Count() == len(b.values) {
		present = nil
	}
	out := DenseArray[T]{values: b.buf, present: present}
	b.values = nil
	b.present = nil
	return out
}
