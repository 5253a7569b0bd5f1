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

// Package fingerprint provides a 128-bit content-addressable identity
// for values and type descriptors, computed with BLAKE2b truncated to
// 16 bytes. Two values have the same fingerprint iff the same byte
// stream was fed to the hasher, so combining is order-sensitive.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/codahale/blake2"
)

// Fingerprint is a 128-bit hash identity.
type Fingerprint struct {
	Hi uint64
	Lo uint64
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x%016x", f.Hi, f.Lo)
}

func (f Fingerprint) IsZero() bool {
	return f.Hi == 0 && f.Lo == 0
}

// Hasher accumulates bytes into a fingerprint. The zero Hasher is not
// usable, construct with NewHasher.
type Hasher struct {
	h   hash.Hash
	buf [8]byte
}

func NewHasher() *Hasher {
	return &Hasher{h: blake2.New(&blake2.Config{Size: 16})}
}

func (h *Hasher) WriteBytes(p []byte) *Hasher {
	h.WriteUint64(uint64(len(p)))
	h.h.Write(p)
	return h
}

func (h *Hasher) WriteString(s string) *Hasher {
	return h.WriteBytes([]byte(s))
}

func (h *Hasher) WriteUint64(v uint64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.h.Write(h.buf[:])
	return h
}

func (h *Hasher) WriteBool(v bool) *Hasher {
	if v {
		return h.WriteUint64(1)
	}
	return h.WriteUint64(0)
}

func (h *Hasher) WriteFingerprint(f Fingerprint) *Hasher {
	return h.WriteUint64(f.Hi).WriteUint64(f.Lo)
}

func (h *Hasher) Done() Fingerprint {
	sum := h.h.Sum(nil)
	return Fingerprint{
		Hi: binary.LittleEndian.Uint64(sum[:8]),
		Lo: binary.LittleEndian.Uint64(sum[8:16]),
	}
}

// OfString is a convenience for fingerprinting a single string.
func OfString(s string) Fingerprint {
	return NewHasher().WriteString(s).Done()
}

// OfBytes is a convenience for fingerprinting a single byte slice.
func OfBytes(p []byte) Fingerprint {
	return NewHasher().WriteBytes(p).Done()
}
