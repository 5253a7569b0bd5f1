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

// Package buffer provides the shared flat memory range behind dense
// arrays. A Buffer is immutable once published: slicing produces a new
// window over the same backing store, never a copy, and mutation of a
// published buffer is not permitted.
package buffer

import (
	"reflect"

	"github.com/quiverdata/quiver/pkg/container/types"
)

// Buffer is an immutable flat range of T. Many arrays may share one
// backing store after zero-copy slicing.
type Buffer[T any] struct {
	data  []T
	owned bool
}

// Wrap takes ownership of a heap slice.
func Wrap[T any](data []T) Buffer[T] {
	return Buffer[T]{data: data, owned: true}
}

// FromBytes builds a buffer of n values of T over factory-allocated
// bytes. The buffer's ownership discipline is the factory's.
func FromBytes[T any](f Factory, raw []byte, n int) Buffer[T] {
	return Buffer[T]{data: types.DecodeSlice[T](raw)[:n], owned: f.Owned()}
}

// Alloc allocates a zeroed buffer of n values from the factory. The
// returned slice aliases the buffer and must be fully written before
// the buffer is published. Pointer-carrying element types always land
// on the GC heap regardless of the factory: the collector does not
// scan raw byte regions, so hiding pointers there would free them.
func Alloc[T any](f Factory, n int) (Buffer[T], []T, error) {
	var t T
	if types.IsRefGoType(reflect.TypeOf(&t).Elem()) {
		data := make([]T, n)
		return Buffer[T]{data: data, owned: true}, data, nil
	}
	raw, err := f.Alloc(n * int(sizeOf(t)))
	if err != nil {
		return Buffer[T]{}, nil, err
	}
	data := types.DecodeSlice[T](raw)
	if data == nil {
		data = []T{}
	}
	return Buffer[T]{data: data[:n], owned: f.Owned()}, data[:n], nil
}

func (b Buffer[T]) Len() int {
	return len(b.data)
}

// Values exposes the underlying range. Read-only by contract.
func (b Buffer[T]) Values() []T {
	return b.data
}

func (b Buffer[T]) At(i int) T {
	return b.data[i]
}

// Slice returns a zero-copy window [i, j) sharing the backing store.
func (b Buffer[T]) Slice(i, j int) Buffer[T] {
	return Buffer[T]{data: b.data[i:j:j], owned: b.owned}
}

// Owned reports whether the buffer is backed by independently-freed
// heap memory (true) or borrowed from an arena whose lifetime bounds
// it (false).
func (b Buffer[T]) Owned() bool {
	return b.owned
}
