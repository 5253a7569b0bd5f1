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

// Package qerr defines the closed error-code table used by the whole
// runtime. Every fallible operation returns an *Error built here; the
// code classifies, the message carries the offending names and sizes.
package qerr

import (
	"errors"
	"fmt"
)

const (
	// Ok is never attached to an error, it is the zero code.
	Ok uint16 = 0

	// Group 1: internal errors.
	ErrInternal uint16 = 20101
	ErrNYI      uint16 = 20102
	ErrOOM      uint16 = 20103

	// Group 2: invalid input.
	ErrInvalidArg      uint16 = 20203
	ErrInvalidInput    uint16 = 20301
	ErrIndexOutOfRange uint16 = 20201

	// Group 3: type system.
	ErrTypeMismatch uint16 = 20501
	ErrDuplicate    uint16 = 20305

	// Group 4: lifecycle.
	ErrPrecondition uint16 = 20401
)

var errNames = map[uint16]string{
	ErrInternal:        "internal error",
	ErrNYI:             "not yet implemented",
	ErrOOM:             "out of memory",
	ErrInvalidArg:      "invalid argument",
	ErrInvalidInput:    "invalid input",
	ErrIndexOutOfRange: "index out of range",
	ErrTypeMismatch:    "type mismatch",
	ErrDuplicate:       "duplicate registration",
	ErrPrecondition:    "precondition failed",
}

type Error struct {
	code uint16
	msg  string
}

func (e *Error) Error() string {
	name, ok := errNames[e.code]
	if !ok {
		name = "unknown error"
	}
	return fmt.Sprintf("%s: %s", name, e.msg)
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func newError(code uint16, format string, args ...any) *Error {
	if len(args) == 0 {
		return &Error{code: code, msg: format}
	}
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// IsErrCode reports whether err is (or wraps) an *Error with the given code.
func IsErrCode(err error, code uint16) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.code == code
	}
	return false
}

func NewInternal(format string, args ...any) *Error {
	return newError(ErrInternal, format, args...)
}

func NewNYI(format string, args ...any) *Error {
	return newError(ErrNYI, format, args...)
}

func NewOOM(requested, available int64) *Error {
	return newError(ErrOOM, "requested %d bytes, %d available", requested, available)
}

func NewInvalidArg(arg string, val any) *Error {
	return newError(ErrInvalidArg, "invalid argument %s: %v", arg, val)
}

func NewInvalidInput(format string, args ...any) *Error {
	return newError(ErrInvalidInput, format, args...)
}

func NewIndexOutOfRange(index, size int) *Error {
	return newError(ErrIndexOutOfRange, "index %d out of range [0, %d)", index, size)
}

func NewTypeMismatch(expected, actual string) *Error {
	return newError(ErrTypeMismatch, "expected %s, got %s", expected, actual)
}

func NewDuplicate(format string, args ...any) *Error {
	return newError(ErrDuplicate, format, args...)
}

func NewPrecondition(format string, args ...any) *Error {
	return newError(ErrPrecondition, format, args...)
}
