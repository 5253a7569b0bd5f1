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

// Package types implements the QType system: one singleton descriptor
// per distinct Go value type, created once and never mutated or freed.
// QType identity is pointer identity; everything downstream (slots,
// typed values, copiers) compares descriptors by pointer.
package types

import (
	"fmt"
	"reflect"

	"github.com/quiverdata/quiver/pkg/common/fingerprint"
)

// Kind discriminates the closed set of value categories. Dispatch
// switches on Kind the same way a column engine switches on a type oid.
type Kind uint16

const (
	T_any Kind = iota
	T_unit
	T_bool
	T_int8
	T_int16
	T_int32
	T_int64
	T_uint8
	T_uint16
	T_uint32
	T_uint64
	T_float32
	T_float64
	T_string
	T_bytes
	T_optional
	T_densearray
	T_extension
)

var kindNames = map[Kind]string{
	T_any:        "any",
	T_unit:       "unit",
	T_bool:       "bool",
	T_int8:       "int8",
	T_int16:      "int16",
	T_int32:      "int32",
	T_int64:      "int64",
	T_uint8:      "uint8",
	T_uint16:     "uint16",
	T_uint32:     "uint32",
	T_uint64:     "uint64",
	T_float32:    "float32",
	T_float64:    "float64",
	T_string:     "string",
	T_bytes:      "bytes",
	T_optional:   "optional",
	T_densearray: "dense_array",
	T_extension:  "extension",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// Field describes one physical sub-region of a composite value type,
// e.g. the presence flag of an optional. Offsets are byte offsets from
// the start of the value.
type Field struct {
	Name   string
	Offset uintptr
	Type   *QType
}

// QType is the singleton runtime descriptor of a value type. Exactly
// one instance exists per distinct Go type for the life of the
// process; instances are immutable after construction.
type QType struct {
	kind      Kind
	name      string
	goType    reflect.Type
	valueType *QType // element type for optional/dense_array, nil for scalars
	size      uintptr
	align     uintptr
	isRef     bool // representation carries Go pointers; frames box it
	fields    []Field
	fp        fingerprint.Fingerprint
	repr      func(any) string // literal representation hook, may be nil
}

func (t *QType) Kind() Kind { return t.kind }

func (t *QType) Name() string { return t.name }

// ValueQType returns the element type for containers (optional,
// dense array), nil for scalars.
func (t *QType) ValueQType() *QType { return t.valueType }

// TypeSize returns the in-memory byte size of one value.
func (t *QType) TypeSize() int { return int(t.size) }

func (t *QType) Alignment() int { return int(t.align) }

func (t *QType) GoType() reflect.Type { return t.goType }

// IsRefKind reports whether the Go representation contains pointers,
// which forces frames to store the value boxed instead of in the raw
// byte region.
func (t *QType) IsRefKind() bool { return t.isRef }

// NumFields returns the number of declared physical sub-fields.
func (t *QType) NumFields() int { return len(t.fields) }

func (t *QType) FieldAt(i int) Field { return t.fields[i] }

func (t *QType) Fingerprint() fingerprint.Fingerprint { return t.fp }

func (t *QType) String() string { return t.name }

// ReprOf renders v as a source literal using the registered hook.
// Returns "", false when the type has no hook.
func (t *QType) ReprOf(v any) (string, bool) {
	if t.repr == nil {
		return "", false
	}
	return t.repr(v), true
}

// IsScalarQType reports whether t is a plain scalar (unit included).
func IsScalarQType(t *QType) bool {
	return t != nil && t.kind >= T_unit && t.kind <= T_bytes
}

func IsOptionalQType(t *QType) bool {
	return t != nil && t.kind == T_optional
}

func IsDenseArrayQType(t *QType) bool {
	return t != nil && t.kind == T_densearray
}

// DecayOptionalQType strips one level of optionality; non-optional
// types come back unchanged.
func DecayOptionalQType(t *QType) *QType {
	if IsOptionalQType(t) {
		return t.valueType
	}
	return t
}

func newQType(kind Kind, name string, rt reflect.Type, valueType *QType, isRef bool, fields []Field) *QType {
	h := fingerprint.NewHasher().WriteString("qtype").WriteString(name)
	if valueType != nil {
		h.WriteFingerprint(valueType.fp)
	}
	return &QType{
		kind:      kind,
		name:      name,
		goType:    rt,
		valueType: valueType,
		size:      rt.Size(),
		align:     uintptr(rt.Align()),
		isRef:     isRef,
		fields:    fields,
		fp:        h.Done(),
	}
}

// Unit is the carrier of "no value bits"; Optional[Unit] is a bare
// presence flag.
type Unit struct{}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
