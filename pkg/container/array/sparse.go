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
	"github.com/RoaringBitmap/roaring"

	"github.com/quiverdata/quiver/pkg/container/types"
)

// Array is the sparse counterpart of DenseArray: present row ids in a
// compressed roaring bitmap, values stored densely for the present
// rows only. It wins when most rows are absent; lookups pay a rank
// query instead of a direct index.
type Array[T any] struct {
	size int
	ids  *roaring.Bitmap
	vals []T
}

// FromDense compacts a dense array, keeping only the present rows.
func FromDense[T any](d DenseArray[T]) Array[T] {
	ids := roaring.New()
	vals := make([]T, 0, d.CountPresent())
	for i := 0; i < d.Len(); i++ {
		if d.Present(i) {
			ids.Add(uint32(i))
			vals = append(vals, d.Value(i))
		}
	}
	return Array[T]{size: d.Len(), ids: ids, vals: vals}
}

// FromOptionals builds a sparse array from a row sequence.
func FromOptionals[T any](opts ...types.Optional[T]) Array[T] {
	ids := roaring.New()
	var vals []T
	for i, o := range opts {
		if o.Present {
			ids.Add(uint32(i))
			vals = append(vals, o.Value)
		}
	}
	return Array[T]{size: len(opts), ids: ids, vals: vals}
}

func (a Array[T]) Len() int {
	return a.size
}

// Count returns the number of present rows.
func (a Array[T]) Count() int {
	return len(a.vals)
}

func (a Array[T]) Present(i int) bool {
	return a.ids.Contains(uint32(i))
}

// Get returns row i. Present rows are located by rank into the dense
// value store.
func (a Array[T]) Get(i int) types.Optional[T] {
	if !a.ids.Contains(uint32(i)) {
		return types.Empty[T]()
	}
	return types.NewOptional(a.vals[a.ids.Rank(uint32(i))-1])
}

// ForEachPresent visits present rows in increasing id order.
func (a Array[T]) ForEachPresent(fn func(i int, v T)) {
	it := a.ids.Iterator()
	idx := 0
	for it.HasNext() {
		fn(int(it.Next()), a.vals[idx])
		idx++
	}
}

// ToDense expands back to a dense array; values of absent rows are
// zero.
func (a Array[T]) ToDense() DenseArray[T] {
	b := NewBuilder[T](a.size)
	a.ForEachPresent(func(i int, v T) {
		b.Set(i, v)
	})
	return b.Build()
}
