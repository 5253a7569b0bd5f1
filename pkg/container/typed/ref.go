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

// Package typed implements the type-erased value containers: Ref, a
// borrowing view pairing a qtype with the address of a value, and
// Value, the owning copy. Downcasts compare qtype descriptors by
// pointer before reinterpreting storage.
package typed

import (
	"reflect"
	"unsafe"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/frame"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// Ref is a non-owning typed view. The pointed-to storage must outlive
// the Ref; frames revoke it on Free, caller variables on scope exit.
type Ref struct {
	qt *types.QType
	// ptr addresses either the value itself or, for boxed frame
	// slots, the `any` cell holding it.
	ptr   unsafe.Pointer
	boxed bool
}

// RefFromValue views a caller-owned value in place.
func RefFromValue[T any](v *T) Ref {
	return Ref{qt: types.GetQType[T](), ptr: unsafe.Pointer(v)}
}

// RefFromSlot views a frame slot in place.
func RefFromSlot(ts frame.TypedSlot, f frame.ConstPtr) Ref {
	return Ref{qt: ts.QType(), ptr: f.SlotPointer(ts), boxed: ts.IsBoxed()}
}

func (r Ref) GetType() *types.QType {
	return r.qt
}

// RefAs downcasts the view to T, failing when T's qtype is not the
// ref's qtype.
func RefAs[T any](r Ref) (T, error) {
	want := types.GetQType[T]()
	if r.qt != want {
		var zero T
		return zero, qerr.NewTypeMismatch(want.Name(), r.qt.Name())
	}
	return UnsafeRefAs[T](r), nil
}

// UnsafeRefAs skips the qtype check; the caller must have already
// established the type, typically in a kind-dispatch switch.
func UnsafeRefAs[T any](r Ref) T {
	if r.boxed {
		cell := *(*any)(r.ptr)
		if cell == nil {
			var zero T
			return zero
		}
		return cell.(T)
	}
	return *(*T)(r.ptr)
}

// DerefValue copies the referenced storage into an owning Value.
func (r Ref) DerefValue() Value {
	if r.boxed {
		cell := *(*any)(r.ptr)
		if cell == nil {
			cell = reflect.Zero(r.qt.GoType()).Interface()
		}
		return Value{qt: r.qt, v: cell}
	}
	v := reflect.NewAt(r.qt.GoType(), r.ptr).Elem().Interface()
	return Value{qt: r.qt, v: v}
}

func (r Ref) String() string {
	return r.DerefValue().String()
}
