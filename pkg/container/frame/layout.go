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

// Package frame gives every value a fixed address inside one
// allocation. A Layout is built once and frozen; a Slot is a
// compile-time-typed address within it; a TypedSlot is the erased
// runtime form. Plain-data slots live in a raw byte region accessed
// with unsafe typed reads; slots whose Go representation carries
// pointers (dense arrays, strings, extension values) live in a
// parallel boxed region, invisible at the slot API level.
package frame

import (
	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/types"
)

const noRef int32 = -1

// Slot is a compile-time-typed address within one Layout. Slots are
// valid only for frames of the layout that produced them; applying a
// slot to a frame of another layout is unchecked and undefined.
type Slot[T any] struct {
	off uint32
	ref int32
}

// ByteOffset returns the slot's offset in the layout's byte region.
// Meaningless for boxed slots.
func (s Slot[T]) ByteOffset() int {
	return int(s.off)
}

// IsBoxed reports whether the slot lives in the boxed region.
func (s Slot[T]) IsBoxed() bool {
	return s.ref != noRef
}

// Layout is the immutable description of a frame: total size,
// alignment, and the ordered set of typed slots.
type Layout struct {
	size    uintptr
	align   uintptr
	slots   []TypedSlot
	numRefs int
}

func (l *Layout) Size() int {
	return int(l.size)
}

func (l *Layout) Alignment() int {
	return int(l.align)
}

func (l *Layout) SlotCount() int {
	return len(l.slots)
}

func (l *Layout) SlotAt(i int) TypedSlot {
	return l.slots[i]
}

// RefSlotCount returns the number of boxed cells a frame of this
// layout carries.
func (l *Layout) RefSlotCount() int {
	return l.numRefs
}

// LayoutBuilder accumulates typed slots. Build consumes it: any
// AddSlot after Build panics, and Build cannot be called twice.
type LayoutBuilder struct {
	size    uintptr
	align   uintptr
	slots   []TypedSlot
	numRefs int
	built   bool
}

func NewLayoutBuilder() *LayoutBuilder {
	return &LayoutBuilder{align: 1}
}

// AddSlot reserves space for one T at natural alignment and returns
// its typed address. T's qtype must be registered.
func AddSlot[T any](b *LayoutBuilder) Slot[T] {
	qt := types.GetQType[T]()
	ts := b.addErased(qt)
	return Slot[T]{off: ts.off, ref: ts.ref}
}

// AddSlotOf is the runtime-typed form of AddSlot, used when the slot
// type is only known dynamically.
func (b *LayoutBuilder) AddSlotOf(qt *types.QType) TypedSlot {
	return b.addErased(qt)
}

func (b *LayoutBuilder) addErased(qt *types.QType) TypedSlot {
	if b.built {
		panic(qerr.NewPrecondition("layout already built, no new slots"))
	}
	var ts TypedSlot
	if qt.IsRefKind() {
		ts = TypedSlot{qt: qt, off: 0, ref: int32(b.numRefs)}
		b.numRefs++
	} else {
		off := alignUp(b.size, uintptr(qt.Alignment()))
		size := uintptr(qt.TypeSize())
		// Zero-size types still reserve one byte so the slot's offset
		// stays addressable inside the frame's byte region.
		if size == 0 {
			size = 1
		}
		b.size = off + size
		if a := uintptr(qt.Alignment()); a > b.align {
			b.align = a
		}
		ts = TypedSlot{qt: qt, off: uint32(off), ref: noRef}
	}
	b.slots = append(b.slots, ts)
	return ts
}

// Build freezes the layout. The builder is consumed: further use
// panics.
func (b *LayoutBuilder) Build() *Layout {
	if b.built {
		panic(qerr.NewPrecondition("layout builder already consumed"))
	}
	b.built = true
	return &Layout{
		size:    alignUp(b.size, b.align),
		align:   b.align,
		slots:   b.slots,
		numRefs: b.numRefs,
	}
}

func alignUp(n, a uintptr) uintptr {
	return (n + a - 1) &^ (a - 1)
}
