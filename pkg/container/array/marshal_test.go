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

package array

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/types"
)

func TestMarshalRoundTrip(t *testing.T) {
	a := Create(
		types.NewOptional(int64(1)),
		types.Empty[int64](),
		types.NewOptional(int64(-3)),
	)
	data, err := Marshal(a)
	require.NoError(t, err)

	back, err := Unmarshal[int64](data)
	require.NoError(t, err)
	require.True(t, Equal(a, back))
}

func TestMarshalAllPresent(t *testing.T) {
	a := FromValues([]float64{1.5, 2.5, 3.5})
	data, err := Marshal(a)
	require.NoError(t, err)

	back, err := Unmarshal[float64](data)
	require.NoError(t, err)
	require.True(t, back.AllPresent())
	bm, _ := back.PresentBitmap()
	require.Nil(t, bm, "all-present image decodes without a bitmap")
	require.Equal(t, a.Values(), back.Values())
}

func TestMarshalSliceRebasesBitmap(t *testing.T) {
	a := Create(
		types.NewOptional(int32(0)),
		types.Empty[int32](),
		types.NewOptional(int32(2)),
		types.Empty[int32](),
	)
	w := a.Slice(1, 4)
	data, err := Marshal(w)
	require.NoError(t, err)

	back, err := Unmarshal[int32](data)
	require.NoError(t, err)
	require.True(t, Equal(w, back))
	_, bitOffset := back.PresentBitmap()
	require.Equal(t, 0, bitOffset, "serialized form starts at bit 0")
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(Create[int64]())
	require.NoError(t, err)
	back, err := Unmarshal[int64](data)
	require.NoError(t, err)
	require.Equal(t, 0, back.Len())
}

func TestUnmarshalTruncated(t *testing.T) {
	a := Create(types.NewOptional(int64(1)), types.Empty[int64]())
	data, err := Marshal(a)
	require.NoError(t, err)

	for _, n := range []int{0, 8, 15, len(data) - 1} {
		_, err := Unmarshal[int64](data[:n])
		require.True(t, qerr.IsErrCode(err, qerr.ErrInvalidInput), "truncation at %d", n)
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	a := Create(types.NewOptional(int64(1)), types.Empty[int64]())
	data, err := Marshal(a)
	require.NoError(t, err)

	corrupt := func(off int, v byte) []byte {
		bad := append([]byte(nil), data...)
		bad[off] = v
		return bad
	}

	// Value-image length that is not a whole number of elements.
	_, err = Unmarshal[int64](corrupt(8, 3))
	require.True(t, qerr.IsErrCode(err, qerr.ErrInvalidInput))

	// Bitmap image shorter than its own header.
	_, err = Unmarshal[int64](corrupt(32, 5))
	require.True(t, qerr.IsErrCode(err, qerr.ErrInvalidInput))

	// Bitmap payload size contradicting the image length.
	_, err = Unmarshal[int64](corrupt(48, 0xFF))
	require.True(t, qerr.IsErrCode(err, qerr.ErrInvalidInput))
}

func TestUnmarshalWrongElementType(t *testing.T) {
	a := FromValues([]int64{1, 2, 3})
	data, err := Marshal(a)
	require.NoError(t, err)

	// 24 value bytes decode as 6 int32s, contradicting the length.
	_, err = Unmarshal[int32](data)
	require.True(t, qerr.IsErrCode(err, qerr.ErrInvalidInput))
}
