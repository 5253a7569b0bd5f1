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

package frame

import (
	"unsafe"

	"github.com/quiverdata/quiver/pkg/common/mpool"
)

type frameRef struct {
	data   []byte
	refs   []any
	layout *Layout
}

// Ptr is a non-owning mutable view of one frame. Valid exactly as
// long as the owning Allocation.
type Ptr struct {
	frameRef
}

// ConstPtr is the read-only view.
type ConstPtr struct {
	frameRef
}

func (p Ptr) Const() ConstPtr {
	return ConstPtr{p.frameRef}
}

func (p Ptr) Layout() *Layout {
	return p.layout
}

func (p ConstPtr) Layout() *Layout {
	return p.layout
}

// Get reads the slot's value. The slot must belong to the frame's
// layout; cross-layout access is undefined.
func Get[T any](f ConstPtr, s Slot[T]) T {
	if s.ref != noRef {
		cell := f.refs[s.ref]
		if cell == nil {
			var zero T
			return zero
		}
		return cell.(T)
	}
	return *(*T)(unsafe.Pointer(&f.data[s.off]))
}

// GetMut is Get for a mutable frame pointer.
func GetMut[T any](f Ptr, s Slot[T]) T {
	return Get(f.Const(), s)
}

// Set writes the slot's value.
func Set[T any](f Ptr, s Slot[T], v T) {
	if s.ref != noRef {
		f.refs[s.ref] = v
		return
	}
	*(*T)(unsafe.Pointer(&f.data[s.off])) = v
}

// SlotPointer returns the raw address of an erased slot: a pointer
// into the byte region for plain-data slots, the address of the boxed
// cell for boxed slots. The typed-ref layer builds borrowing views
// from it; validity is bounded by the allocation.
func (p ConstPtr) SlotPointer(ts TypedSlot) unsafe.Pointer {
	if ts.ref != noRef {
		return unsafe.Pointer(&p.refs[ts.ref])
	}
	return unsafe.Pointer(&p.data[ts.off])
}

// Allocation owns one zeroed frame: the byte region charged to a
// memory pool plus the boxed region. The zeroed state is valid: every
// optional slot reads as missing. Free returns the bytes to the pool;
// frame pointers into a freed allocation are invalid.
type Allocation struct {
	layout *Layout
	data   []byte
	refs   []any
	pool   *mpool.MPool
}

func NewAllocation(layout *Layout, pool *mpool.MPool) (*Allocation, error) {
	data, err := pool.Alloc(layout.Size())
	if err != nil {
		return nil, err
	}
	var refs []any
	if n := layout.RefSlotCount(); n > 0 {
		refs = make([]any, n)
	}
	return &Allocation{layout: layout, data: data, refs: refs, pool: pool}, nil
}

func (a *Allocation) Layout() *Layout {
	return a.layout
}

func (a *Allocation) Ptr() Ptr {
	return Ptr{frameRef{data: a.data, refs: a.refs, layout: a.layout}}
}

func (a *Allocation) ConstPtr() ConstPtr {
	return ConstPtr{frameRef{data: a.data, refs: a.refs, layout: a.layout}}
}

func (a *Allocation) Free() {
	a.pool.Free(a.data)
	a.data = nil
	a.refs = nil
}

// NewAllocationBatch allocates n independent frames of one layout.
// Freeing the batch frees all of them.
type AllocationBatch struct {
	allocs []*Allocation
}

func NewAllocationBatch(layout *Layout, n int, pool *mpool.MPool) (*AllocationBatch, error) {
	b := &AllocationBatch{allocs: make([]*Allocation, n)}
	for i := 0; i < n; i++ {
		a, err := NewAllocation(layout, pool)
		if err != nil {
			b.Free()
			return nil, err
		}
		b.allocs[i] = a
	}
	return b, nil
}

func (b *AllocationBatch) Len() int {
	return len(b.allocs)
}

func (b *AllocationBatch) At(i int) *Allocation {
	return b.allocs[i]
}

func (b *AllocationBatch) Ptrs() []Ptr {
	out := make([]Ptr, len(b.allocs))
	for i, a := range b.allocs {
		out[i] = a.Ptr()
	}
	return out
}

func (b *AllocationBatch) ConstPtrs() []ConstPtr {
	out := make([]ConstPtr, len(b.allocs))
	for i, a := range b.allocs {
		out[i] = a.ConstPtr()
	}
	return out
}

func (b *AllocationBatch) Free() {
	for _, a := range b.allocs {
		if a != nil {
			a.Free()
		}
	}
	b.allocs = nil
}
