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

package types

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/quiverdata/quiver/pkg/common/qerr"
)

// The registry is append-only: entries are never removed or replaced,
// so a pointer obtained once is valid forever. Writes take the mutex;
// reads take the read lock only.
var registry = struct {
	sync.RWMutex
	byGoType map[reflect.Type]*QType
}{byGoType: make(map[reflect.Type]*QType)}

func lookup(rt reflect.Type) (*QType, bool) {
	registry.RLock()
	qt, ok := registry.byGoType[rt]
	registry.RUnlock()
	return qt, ok
}

func insert(qt *QType) (*QType, error) {
	registry.Lock()
	defer registry.Unlock()
	if prev, ok := registry.byGoType[qt.goType]; ok {
		return prev, qerr.NewDuplicate("qtype for %v already registered as %s", qt.goType, prev.name)
	}
	registry.byGoType[qt.goType] = qt
	return qt, nil
}

// insertOrGet registers qt unless the Go type already has a
// descriptor, in which case the existing singleton wins. Used by the
// lazy container constructors where two goroutines may race on first
// access.
func insertOrGet(qt *QType) *QType {
	registry.Lock()
	defer registry.Unlock()
	if prev, ok := registry.byGoType[qt.goType]; ok {
		return prev
	}
	registry.byGoType[qt.goType] = qt
	return qt
}

// GetQType returns the singleton descriptor for T. It panics if T was
// never registered; builtin scalars, their optionals, and the dense
// array types register themselves at package init, so the panic only
// fires for genuinely unknown types.
func GetQType[T any]() *QType {
	rt := typeOf[T]()
	if qt, ok := lookup(rt); ok {
		return qt
	}
	panic(qerr.NewInternal("no qtype registered for Go type %v", rt))
}

// QTypeOf looks up the descriptor for v's dynamic type.
func QTypeOf(v any) (*QType, bool) {
	return lookup(reflect.TypeOf(v))
}

// QTypeByGoType looks up the descriptor for a reflect type.
func QTypeByGoType(rt reflect.Type) (*QType, bool) {
	return lookup(rt)
}

func registerScalar[T any](kind Kind, name string, isRef bool) *QType {
	qt, err := insert(newQType(kind, name, typeOf[T](), nil, isRef, nil))
	if err != nil {
		panic(err)
	}
	return qt
}

// registerOptional builds the optional descriptor for T, deriving the
// presence/value sub-fields from the physical layout of Optional[T].
// Optional[Unit] declares the presence field only.
func registerOptional[T any]() *QType {
	elem := GetQType[T]()
	var probe Optional[T]
	fields := []Field{
		{Name: "presence", Offset: unsafe.Offsetof(probe.Present), Type: GetQType[bool]()},
	}
	if elem.kind != T_unit {
		fields = append(fields, Field{Name: "value", Offset: unsafe.Offsetof(probe.Value), Type: elem})
	}
	qt, err := insert(newQType(
		T_optional, "optional["+elem.name+"]", typeOf[Optional[T]](), elem, elem.isRef, fields))
	if err != nil {
		panic(err)
	}
	return qt
}

// RegisterContainerQType registers the descriptor for a container
// representation C with the given element type. Container values are
// always ref-kind: their Go representation carries slices. Safe to
// call from concurrent package inits; the first registration wins.
func RegisterContainerQType[C any](kind Kind, name string, elem *QType) *QType {
	return insertOrGet(newQType(kind, name, typeOf[C](), elem, true, nil))
}

// RegisterExtensionType registers a caller-defined value type with an
// optional literal-representation hook. Registering the same Go type
// twice fails with ErrDuplicate; this is the extension point the code
// generator uses for external types.
func RegisterExtensionType[T any](name string, repr func(any) string) (*QType, error) {
	rt := typeOf[T]()
	qt := newQType(T_extension, name, rt, nil, containsPointers(rt), nil)
	qt.repr = repr
	return insert(qt)
}

// IsRefGoType reports whether values of rt carry Go pointers. Such
// values must never be stored in raw byte regions the GC does not
// scan; buffers and frames box them instead.
func IsRefGoType(rt reflect.Type) bool {
	return containsPointers(rt)
}

func containsPointers(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int, reflect.Uint, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return containsPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if containsPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func init() {
	registerScalar[Unit](T_unit, "unit", false)
	registerScalar[bool](T_bool, "bool", false)
	registerScalar[int8](T_int8, "int8", false)
	registerScalar[int16](T_int16, "int16", false)
	registerScalar[int32](T_int32, "int32", false)
	registerScalar[int64](T_int64, "int64", false)
	registerScalar[uint8](T_uint8, "uint8", false)
	registerScalar[uint16](T_uint16, "uint16", false)
	registerScalar[uint32](T_uint32, "uint32", false)
	registerScalar[uint64](T_uint64, "uint64", false)
	registerScalar[float32](T_float32, "float32", false)
	registerScalar[float64](T_float64, "float64", false)
	registerScalar[string](T_string, "string", true)
	registerScalar[[]byte](T_bytes, "bytes", true)

	registerOptional[Unit]()
	registerOptional[bool]()
	registerOptional[int8]()
	registerOptional[int16]()
	registerOptional[int32]()
	registerOptional[int64]()
	registerOptional[uint8]()
	registerOptional[uint16]()
	registerOptional[uint32]()
	registerOptional[uint64]()
	registerOptional[float32]()
	registerOptional[float64]()
	registerOptional[string]()
	registerOptional[[]byte]()
}
