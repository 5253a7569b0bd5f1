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

package typed

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/quiverdata/quiver/pkg/common/fingerprint"
	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// Value owns a copy of a value together with its qtype. Unlike Ref it
// has no lifetime ties; it can be stored, hashed and passed across
// goroutines.
type Value struct {
	qt *types.QType
	v  any
}

// FromValue copies v into an owning Value. Panics when T's qtype is
// not registered, same as types.GetQType.
func FromValue[T any](v T) Value {
	return Value{qt: types.GetQType[T](), v: v}
}

// FromRef copies the storage behind a Ref.
func FromRef(r Ref) Value {
	return r.DerefValue()
}

func (v Value) GetType() *types.QType {
	return v.qt
}

// AsRef views the boxed payload in place. The Ref is valid while the
// returned view is reachable.
func (v *Value) AsRef() Ref {
	return Ref{qt: v.qt, ptr: unsafe.Pointer(&v.v), boxed: true}
}

// As downcasts the value to T, failing when T's qtype is not the
// value's qtype.
func As[T any](v Value) (T, error) {
	want := types.GetQType[T]()
	if v.qt != want {
		var zero T
		return zero, qerr.NewTypeMismatch(want.Name(), v.qt.Name())
	}
	return v.v.(T), nil
}

// UnsafeAs skips the qtype check.
func UnsafeAs[T any](v Value) T {
	return v.v.(T)
}

// Unboxed returns the payload as any.
func (v Value) Unboxed() any {
	return v.v
}

// FieldCount returns the number of physical sub-fields of the value's
// qtype; scalars have none, optionals expose presence and, except for
// optional[unit], the wrapped value.
func (v Value) FieldCount() int {
	return v.qt.NumFields()
}

// Field decomposes the value into sub-field i, mirroring the slot
// decomposition of frame layouts.
func (v Value) Field(i int) (Value, error) {
	if i < 0 || i >= v.qt.NumFields() {
		return Value{}, qerr.NewIndexOutOfRange(i, v.qt.NumFields())
	}
	qf := v.qt.FieldAt(i)
	rv := reflect.ValueOf(v.v)
	rt := rv.Type()
	for j := 0; j < rt.NumField(); j++ {
		if rt.Field(j).Offset == qf.Offset && rt.Field(j).Type == qf.Type.GoType() {
			return Value{qt: qf.Type, v: rv.Field(j).Interface()}, nil
		}
	}
	return Value{}, qerr.NewInternal("field %q of %s has no matching struct field", qf.Name, v.qt.Name())
}

// Fingerprint hashes the qtype identity and the value content.
// Distinct values of the same type, and equal payloads of different
// types, hash differently.
func (v Value) Fingerprint() fingerprint.Fingerprint {
	h := fingerprint.NewHasher().WriteFingerprint(v.qt.Fingerprint())
	writeContent(h, v.qt, v.v)
	return h.Done()
}

func writeContent(h *fingerprint.Hasher, qt *types.QType, v any) {
	switch qt.Kind() {
	case types.T_unit:
	case types.T_bool:
		h.WriteBool(v.(bool))
	case types.T_int8, types.T_int16, types.T_int32, types.T_int64:
		h.WriteUint64(uint64(reflect.ValueOf(v).Int()))
	case types.T_uint8, types.T_uint16, types.T_uint32, types.T_uint64:
		h.WriteUint64(reflect.ValueOf(v).Uint())
	case types.T_float32, types.T_float64:
		h.WriteUint64(math.Float64bits(reflect.ValueOf(v).Float()))
	case types.T_string:
		h.WriteString(v.(string))
	case types.T_bytes:
		h.WriteBytes(v.([]byte))
	case types.T_optional:
		rv := reflect.ValueOf(v)
		present := rv.FieldByName("Present").Bool()
		h.WriteBool(present)
		if present && qt.ValueQType().Kind() != types.T_unit {
			writeContent(h, qt.ValueQType(), rv.FieldByName("Value").Interface())
		}
	default:
		// Containers and extension types hash their display form.
		h.WriteString(fmt.Sprintf("%v", v))
	}
}

func (v Value) String() string {
	if s, ok := v.qt.ReprOf(v.v); ok {
		return s
	}
	return fmt.Sprintf("%v", v.v)
}
