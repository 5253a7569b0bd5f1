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

import "fmt"

// Optional is a presence flag plus a value. The zero value is
// "missing", so zero-filled memory is already a valid missing
// optional. When Present is false the Value field is unspecified and
// must not be read for semantic purposes.
type Optional[T any] struct {
	Present bool
	Value   T
}

func NewOptional[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

// OrElse returns the value when present, def otherwise.
func (o Optional[T]) OrElse(def T) T {
	if o.Present {
		return o.Value
	}
	return def
}

func (o Optional[T]) String() string {
	if !o.Present {
		return "NA"
	}
	return fmt.Sprintf("%v", o.Value)
}

// OptionalEqual compares two optionals; all missing values are equal
// regardless of their value payload.
func OptionalEqual[T comparable](a, b Optional[T]) bool {
	if !a.Present && !b.Present {
		return true
	}
	return a.Present == b.Present && a.Value == b.Value
}

// OptionalEqualValue compares an optional to a bare value.
func OptionalEqualValue[T comparable](a Optional[T], v T) bool {
	return a.Present && a.Value == v
}
