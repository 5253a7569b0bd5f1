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

// Package codegen renders qtypes and values as Go source text: type
// names for declarations and literal expressions that reconstruct a
// value. Pure functions, no templates.
package codegen

import (
	"github.com/quiverdata/quiver/pkg/container/types"
)

// TypeName returns the Go source name of the type behind qt, as seen
// from a file importing the types and array packages.
func TypeName(qt *types.QType) string {
	switch qt.Kind() {
	case types.T_unit:
		return "types.Unit"
	case types.T_bool:
		return "bool"
	case types.T_int8:
		return "int8"
	case types.T_int16:
		return "int16"
	case types.T_int32:
		return "int32"
	case types.T_int64:
		return "int64"
	case types.T_uint8:
		return "uint8"
	case types.T_uint16:
		return "uint16"
	case types.T_uint32:
		return "uint32"
	case types.T_uint64:
		return "uint64"
	case types.T_float32:
		return "float32"
	case types.T_float64:
		return "float64"
	case types.T_string:
		return "string"
	case types.T_bytes:
		return "[]byte"
	case types.T_optional:
		return "types.Optional[" + TypeName(qt.ValueQType()) + "]"
	case types.T_densearray:
		return "array.DenseArray[" + TypeName(qt.ValueQType()) + "]"
	default:
		return qt.GoType().String()
	}
}
