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

package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/array"
	"github.com/quiverdata/quiver/pkg/container/typed"
	"github.com/quiverdata/quiver/pkg/container/types"
)

// LiteralRepr renders the referenced value as a Go expression that
// reconstructs it. Integers are bit-exact; floats use the shortest
// round-trip decimal and always carry their concrete type. Types
// without a representation fail with ErrNYI.
func LiteralRepr(r typed.Ref) (string, error) {
	qt := r.GetType()
	switch qt.Kind() {
	case types.T_unit:
		return "types.Unit{}", nil
	case types.T_bool:
		return strconv.FormatBool(typed.UnsafeRefAs[bool](r)), nil
	case types.T_int8:
		return fmt.Sprintf("int8(%d)", typed.UnsafeRefAs[int8](r)), nil
	case types.T_int16:
		return fmt.Sprintf("int16(%d)", typed.UnsafeRefAs[int16](r)), nil
	case types.T_int32:
		return fmt.Sprintf("int32(%d)", typed.UnsafeRefAs[int32](r)), nil
	case types.T_int64:
		return fmt.Sprintf("int64(%d)", typed.UnsafeRefAs[int64](r)), nil
	case types.T_uint8:
		return fmt.Sprintf("uint8(%d)", typed.UnsafeRefAs[uint8](r)), nil
	case types.T_uint16:
		return fmt.Sprintf("uint16(%d)", typed.UnsafeRefAs[uint16](r)), nil
	case types.T_uint32:
		return fmt.Sprintf("uint32(%d)", typed.UnsafeRefAs[uint32](r)), nil
	case types.T_uint64:
		return fmt.Sprintf("uint64(%d)", typed.UnsafeRefAs[uint64](r)), nil
	case types.T_float32:
		f := typed.UnsafeRefAs[float32](r)
		return "float32(" + strconv.FormatFloat(float64(f), 'g', -1, 32) + ")", nil
	case types.T_float64:
		f := typed.UnsafeRefAs[float64](r)
		return "float64(" + strconv.FormatFloat(f, 'g', -1, 64) + ")", nil
	case types.T_string:
		return strconv.Quote(typed.UnsafeRefAs[string](r)), nil
	case types.T_bytes:
		return fmt.Sprintf("[]byte(%q)", typed.UnsafeRefAs[[]byte](r)), nil
	case types.T_optional:
		return optionalRepr(r)
	case types.T_densearray:
		return arrayRepr(r)
	default:
		if s, ok := qt.ReprOf(typed.FromRef(r).Unboxed()); ok {
			return s, nil
		}
		return "", qerr.NewNYI("literal representation for %s", qt.Name())
	}
}

func optionalRepr(r typed.Ref) (string, error) {
	switch r.GetType().ValueQType().Kind() {
	case types.T_unit:
		return optLit(typed.UnsafeRefAs[types.Optional[types.Unit]](r))
	case types.T_bool:
		return optLit(typed.UnsafeRefAs[types.Optional[bool]](r))
	case types.T_int8:
		return optLit(typed.UnsafeRefAs[types.Optional[int8]](r))
	case types.T_int16:
		return optLit(typed.UnsafeRefAs[types.Optional[int16]](r))
	case types.T_int32:
		return optLit(typed.UnsafeRefAs[types.Optional[int32]](r))
	case types.T_int64:
		return optLit(typed.UnsafeRefAs[types.Optional[int64]](r))
	case types.T_uint8:
		return optLit(typed.UnsafeRefAs[types.Optional[uint8]](r))
	case types.T_uint16:
		return optLit(typed.UnsafeRefAs[types.Optional[uint16]](r))
	case types.T_uint32:
		return optLit(typed.UnsafeRefAs[types.Optional[uint32]](r))
	case types.T_uint64:
		return optLit(typed.UnsafeRefAs[types.Optional[uint64]](r))
	case types.T_float32:
		return optLit(typed.UnsafeRefAs[types.Optional[float32]](r))
	case types.T_float64:
		return optLit(typed.UnsafeRefAs[types.Optional[float64]](r))
	case types.T_string:
		return optLit(typed.UnsafeRefAs[types.Optional[string]](r))
	case types.T_bytes:
		return optLit(typed.UnsafeRefAs[types.Optional[[]byte]](r))
	default:
		return "", qerr.NewNYI("literal representation for %s", r.GetType().Name())
	}
}

// optLit renders a missing optional as the empty composite and a
// present one as a NewOptional call around the element literal.
func optLit[T any](o types.Optional[T]) (string, error) {
	tn := TypeName(types.GetQType[T]())
	if !o.Present {
		return "types.Optional[" + tn + "]{}", nil
	}
	inner, err := LiteralRepr(typed.RefFromValue(&o.Value))
	if err != nil {
		return "", err
	}
	return "types.NewOptional[" + tn + "](" + inner + ")", nil
}

func arrayRepr(r typed.Ref) (string, error) {
	switch r.GetType().ValueQType().Kind() {
	case types.T_unit:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[types.Unit]](r))
	case types.T_bool:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[bool]](r))
	case types.T_int8:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[int8]](r))
	case types.T_int16:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[int16]](r))
	case types.T_int32:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[int32]](r))
	case types.T_int64:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[int64]](r))
	case types.T_uint8:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[uint8]](r))
	case types.T_uint16:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[uint16]](r))
	case types.T_uint32:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[uint32]](r))
	case types.T_uint64:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[uint64]](r))
	case types.T_float32:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[float32]](r))
	case types.T_float64:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[float64]](r))
	case types.T_string:
		return arrLit(typed.UnsafeRefAs[array.DenseArray[string]](r))
	default:
		return "", qerr.NewNYI("literal representation for %s", r.GetType().Name())
	}
}

func arrLit[T any](a array.DenseArray[T]) (string, error) {
	tn := TypeName(types.GetQType[T]())
	var sb strings.Builder
	sb.WriteString("array.Create[" + tn + "](")
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		el, err := optLit(a.Get(i))
		if err != nil {
			return "", err
		}
		sb.WriteString(el)
	}
	sb.WriteByte(')')
	return sb.String(), nil
}
