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

// Package bitmap implements a word-packed bitmap with an explicit
// length in bits. The columnar array layer uses it to track presence:
// bit set means the row is present.
//
// Trailing bits of the last word are kept zero; the word-granular
// operations below rely on that.
package bitmap

import (
	"bytes"
	"fmt"
	"math/bits"
)

const wordBits = 64

type Bitmap struct {
	len  int64
	data []uint64
}

func New(size int) *Bitmap {
	var bm Bitmap
	bm.InitWithSize(size)
	return &bm
}

func (n *Bitmap) InitWithSize(size int) {
	n.len = int64(size)
	n.data = make([]uint64, (size+wordBits-1)/wordBits)
}

func (n *Bitmap) InitWith(other *Bitmap) {
	n.len = other.len
	n.data = append([]uint64(nil), other.data...)
}

func (n *Bitmap) Clone() *Bitmap {
	if n == nil {
		return nil
	}
	var ret Bitmap
	ret.InitWith(n)
	return &ret
}

func (n *Bitmap) Reset() {
	n.len = 0
	n.data = nil
}

// Len returns the number of bits in the Bitmap.
func (n *Bitmap) Len() int {
	return int(n.len)
}

// WordCount returns the number of 64-bit words backing the Bitmap.
func (n *Bitmap) WordCount() int {
	return len(n.data)
}

// Word returns the i-th backing word. The batch copiers read whole
// words to handle runs of present/absent rows without per-bit tests.
func (n *Bitmap) Word(i int) uint64 {
	return n.data[i]
}

func (n *Bitmap) IsEmpty() bool {
	for i := range n.data {
		if n.data[i] != 0 {
			return false
		}
	}
	return true
}

// The bitmap must already be sized to cover row.
func (n *Bitmap) Add(row uint64) {
	n.data[row>>6] |= 1 << (row & 0x3F)
}

func (n *Bitmap) AddMany(rows []uint64) {
	for _, row := range rows {
		n.data[row>>6] |= 1 << (row & 0x3F)
	}
}

func (n *Bitmap) Remove(row uint64) {
	if row >= uint64(n.len) {
		return
	}
	n.data[row>>6] &^= 1 << (row & 0x3F)
}

// Contains returns true if the row's bit is set. Rows beyond Len are
// reported as unset.
func (n *Bitmap) Contains(row uint64) bool {
	if row >= uint64(n.len) {
		return false
	}
	return (n.data[row>>6] & (1 << (row & 0x3F))) != 0
}

// AddRange sets bits in [start, end).
func (n *Bitmap) AddRange(start, end uint64) {
	if start >= end {
		return
	}
	i, j := start>>6, (end-1)>>6
	if i == j {
		n.data[i] |= (^uint64(0) << (start & 0x3F)) & (^uint64(0) >> (uint(-end) & 0x3F))
		return
	}
	n.data[i] |= ^uint64(0) << (start & 0x3F)
	for k := i + 1; k < j; k++ {
		n.data[k] = ^uint64(0)
	}
	n.data[j] |= ^uint64(0) >> (uint(-end) & 0x3F)
}

// RemoveRange clears bits in [start, end).
func (n *Bitmap) RemoveRange(start, end uint64) {
	if end > uint64(n.len) {
		end = uint64(n.len)
	}
	if start >= end {
		return
	}
	i, j := start>>6, (end-1)>>6
	if i == j {
		n.data[i] &^= (^uint64(0) << (start & 0x3F)) & (^uint64(0) >> (uint(-end) & 0x3F))
		return
	}
	n.data[i] &^= ^uint64(0) << (start & 0x3F)
	for k := i + 1; k < j; k++ {
		n.data[k] = 0
	}
	n.data[j] &^= ^uint64(0) >> (uint(-end) & 0x3F)
}

func (n *Bitmap) IsSame(m *Bitmap) bool {
	if len(n.data) != len(m.data) {
		return false
	}
	for i := range n.data {
		if n.data[i] != m.data[i] {
			return false
		}
	}
	return true
}

func (n *Bitmap) Or(m *Bitmap) {
	n.TryExpandWithSize(int(m.len))
	size := (int(m.len) + wordBits - 1) / wordBits
	for i := 0; i < size; i++ {
		n.data[i] |= m.data[i]
	}
}

func (n *Bitmap) And(m *Bitmap) {
	n.TryExpandWithSize(int(m.len))
	size := (int(m.len) + wordBits - 1) / wordBits
	for i := 0; i < size; i++ {
		n.data[i] &= m.data[i]
	}
	for i := size; i < len(n.data); i++ {
		n.data[i] = 0
	}
}

func (n *Bitmap) TryExpandWithSize(size int) {
	if int(n.len) >= size {
		return
	}
	newCap := (size + wordBits - 1) / wordBits
	n.len = int64(size)
	if newCap > cap(n.data) {
		data := make([]uint64, newCap)
		copy(data, n.data)
		n.data = data
		return
	}
	if len(n.data) < newCap {
		n.data = n.data[:newCap]
	}
}

func (n *Bitmap) Count() int {
	var cnt int
	for i := int64(0); i < n.len/wordBits; i++ {
		cnt += bits.OnesCount64(n.data[i])
	}
	if offset := n.len % wordBits; offset > 0 {
		last := n.data[n.len/wordBits]
		cnt += bits.OnesCount64(last & ((uint64(1) << offset) - 1))
	}
	return cnt
}

// ToArray returns the positions of all set bits in increasing order.
func (n *Bitmap) ToArray() []uint64 {
	var rows []uint64
	for w, word := range n.data {
		base := uint64(w) * wordBits
		for word != 0 {
			t := word & -word
			rows = append(rows, base+uint64(bits.TrailingZeros64(word)))
			word ^= t
		}
	}
	return rows
}

func (n *Bitmap) String() string {
	return fmt.Sprintf("%v", n.ToArray())
}

func (n *Bitmap) Marshal() []byte {
	var buf bytes.Buffer
	u1 := uint64(n.len)
	u2 := uint64(len(n.data) * 8)
	buf.Write(encodeUint64(&u1))
	buf.Write(encodeUint64(&u2))
	buf.Write(encodeWords(n.data))
	return buf.Bytes()
}

func (n *Bitmap) Unmarshal(data []byte) {
	n.len = int64(decodeUint64(data[:8]))
	data = data[8:]
	size := int(decodeUint64(data[:8]))
	data = data[8:]
	if size == 0 {
		n.data = nil
		return
	}
	n.data = append([]uint64(nil), decodeWords(data[:size])...)
}

func (n *Bitmap) MarshalBinary() ([]byte, error) {
	return n.Marshal(), nil
}

func (n *Bitmap) UnmarshalBinary(data []byte) error {
	n.Unmarshal(data)
	return nil
}
