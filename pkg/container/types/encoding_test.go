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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSlice(t *testing.T) {
	vals := []int64{1, -2, 1 << 40}
	raw := EncodeSlice(vals)
	require.Equal(t, 24, len(raw))

	back := DecodeSlice[int64](raw)
	require.Equal(t, vals, back)

	// The byte image aliases the original slice.
	vals[0] = 99
	require.EqualValues(t, 99, DecodeSlice[int64](raw)[0])

	require.Nil(t, EncodeSlice([]int32(nil)))
	require.Nil(t, DecodeSlice[int32](nil))
}

func TestDecodeSliceBadLength(t *testing.T) {
	require.Panics(t, func() { DecodeSlice[int64](make([]byte, 7)) })
}

func TestEncodeDecodeFixed(t *testing.T) {
	raw := EncodeFixed(float64(3.5))
	require.Equal(t, 8, len(raw))
	require.Equal(t, 3.5, DecodeFixed[float64](raw))

	v := int64(-12345)
	require.Equal(t, v, DecodeInt64(EncodeInt64(&v)))
	u32 := uint32(0xDEADBEEF)
	require.Equal(t, u32, DecodeUint32(EncodeUint32(&u32)))
	u64 := uint64(1) << 63
	require.Equal(t, u64, DecodeUint64(EncodeUint64(&u64)))
}
