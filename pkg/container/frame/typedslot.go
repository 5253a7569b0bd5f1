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
	"fmt"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// TypedSlot is the type-erased form of a Slot: the qtype plus the
// address. Sub-slots are derived on demand from the qtype's declared
// field table, never stored separately.
type TypedSlot struct {
	qt  *types.QType
	off uint32
	ref int32
}

// FromSlot erases a typed slot.
func FromSlot[T any](s Slot[T]) TypedSlot {
	return TypedSlot{qt: types.GetQType[T](), off: s.off, ref: s.ref}
}

// ToSlot downcasts an erased slot back to Slot[T]. Fails with a
// type-mismatch error naming both types when T's qtype is not the
// slot's qtype.
func ToSlot[T any](ts TypedSlot) (Slot[T], error) {
	want := types.GetQType[T]()
	if ts.qt != want {
		return Slot[T]{}, qerr.NewTypeMismatch(want.Name(), ts.qt.Name())
	}
	return Slot[T]{off: ts.off, ref: ts.ref}, nil
}

// UnsafeToSlot skips the type check. The caller must have already
// established the slot's qtype.
func UnsafeToSlot[T any](ts TypedSlot) Slot[T] {
	return Slot[T]{off: ts.off, ref: ts.ref}
}

func (ts TypedSlot) QType() *types.QType {
	return ts.qt
}

func (ts TypedSlot) ByteOffset() int {
	return int(ts.off)
}

func (ts TypedSlot) IsBoxed() bool {
	return ts.ref != noRef
}

// SubSlotCount returns the number of physical sub-slots. Boxed slots
// do not decompose: their value is a single cell, not a byte region.
func (ts TypedSlot) SubSlotCount() int {
	if ts.ref != noRef {
		return 0
	}
	return ts.qt.NumFields()
}

// SubSlot returns the i-th sub-slot, computed as the parent offset
// plus the field's declared offset. For optionals this yields the
// presence slot and, unless the element is unit, the value slot.
func (ts TypedSlot) SubSlot(i int) TypedSlot {
	f := ts.qt.FieldAt(i)
	return TypedSlot{qt: f.Type, off: ts.off + uint32(f.Offset), ref: noRef}
}

func (ts TypedSlot) String() string {
	if ts.ref != noRef {
		return fmt.Sprintf("TypedSlot{%s, box %d}", ts.qt.Name(), ts.ref)
	}
	return fmt.Sprintf("TypedSlot{%s, off %d}", ts.qt.Name(), ts.off)
}
