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

package typed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quiverdata/quiver/pkg/common/mpool"
	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/array"
	"github.com/quiverdata/quiver/pkg/container/frame"
	"github.com/quiverdata/quiver/pkg/container/types"
)

func TestRefFromValue(t *testing.T) {
	v := int64(57)
	r := RefFromValue(&v)
	require.Same(t, types.GetQType[int64](), r.GetType())

	got, err := RefAs[int64](r)
	require.NoError(t, err)
	require.EqualValues(t, 57, got)

	// The ref borrows, it does not copy.
	v = 99
	require.EqualValues(t, 99, UnsafeRefAs[int64](r))
}

func TestRefAsMismatch(t *testing.T) {
	v := int64(1)
	r := RefFromValue(&v)
	_, err := RefAs[float64](r)
	require.True(t, qerr.IsErrCode(err, qerr.ErrTypeMismatch))
	require.EqualError(t, err, "type mismatch: expected float64, got int64")
}

func TestRefFromSlot(t *testing.T) {
	b := frame.NewLayoutBuilder()
	si := frame.AddSlot[int64](b)
	ss := frame.AddSlot[string](b)
	l := b.Build()

	pool := mpool.MustNew("test-typed-refslot")
	defer mpool.DeleteMPool(pool)
	alloc, err := frame.NewAllocation(l, pool)
	require.NoError(t, err)
	defer alloc.Free()
	f := alloc.Ptr()

	frame.Set(f, si, int64(-5))
	frame.Set(f, ss, "boxed")

	ri := RefFromSlot(frame.FromSlot(si), f.Const())
	require.EqualValues(t, -5, UnsafeRefAs[int64](ri))

	rs := RefFromSlot(frame.FromSlot(ss), f.Const())
	require.Equal(t, "boxed", UnsafeRefAs[string](rs))

	// Re-reading after a frame write sees the new value.
	frame.Set(f, si, int64(7))
	require.EqualValues(t, 7, UnsafeRefAs[int64](ri))
}

func TestRefFromZeroedBoxedSlot(t *testing.T) {
	b := frame.NewLayoutBuilder()
	ss := frame.AddSlot[string](b)
	l := b.Build()

	pool := mpool.MustNew("test-typed-zerobox")
	defer mpool.DeleteMPool(pool)
	alloc, err := frame.NewAllocation(l, pool)
	require.NoError(t, err)
	defer alloc.Free()

	r := RefFromSlot(frame.FromSlot(ss), alloc.ConstPtr())
	require.Equal(t, "", UnsafeRefAs[string](r))
	require.Equal(t, "", UnsafeAs[string](r.DerefValue()))
}

func TestValueRoundTrip(t *testing.T) {
	v := FromValue(types.NewOptional(int32(57)))
	require.Same(t, types.GetQType[types.Optional[int32]](), v.GetType())

	got, err := As[types.Optional[int32]](v)
	require.NoError(t, err)
	require.Equal(t, types.NewOptional(int32(57)), got)

	_, err = As[int32](v)
	require.True(t, qerr.IsErrCode(err, qerr.ErrTypeMismatch))
}

func TestValueFromRefCopies(t *testing.T) {
	x := int64(1)
	r := RefFromValue(&x)
	v := FromRef(r)
	x = 2
	require.EqualValues(t, 1, UnsafeAs[int64](v), "Value owns a copy")
}

func TestValueFields(t *testing.T) {
	v := FromValue(types.NewOptional(float64(2.5)))
	require.Equal(t, 2, v.FieldCount())

	presence, err := v.Field(0)
	require.NoError(t, err)
	require.Same(t, types.GetQType[bool](), presence.GetType())
	require.Equal(t, true, UnsafeAs[bool](presence))

	value, err := v.Field(1)
	require.NoError(t, err)
	require.Equal(t, 2.5, UnsafeAs[float64](value))

	_, err = v.Field(2)
	require.True(t, qerr.IsErrCode(err, qerr.ErrIndexOutOfRange))

	// Scalars do not decompose.
	require.Equal(t, 0, FromValue(int64(1)).FieldCount())

	// optional[unit] has the presence field only.
	u := FromValue(types.NewOptional(types.Unit{}))
	require.Equal(t, 1, u.FieldCount())
}

func TestValueFingerprint(t *testing.T) {
	a := FromValue(int64(57))
	b := FromValue(int64(57))
	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), FromValue(int64(58)).Fingerprint())

	// Same bits, different type.
	require.NotEqual(t, FromValue(int64(1)).Fingerprint(), FromValue(uint64(1)).Fingerprint())

	// Missing vs present optionals.
	require.NotEqual(t,
		FromValue(types.Empty[int32]()).Fingerprint(),
		FromValue(types.NewOptional(int32(0))).Fingerprint())
	require.Equal(t,
		FromValue(types.Empty[int32]()).Fingerprint(),
		FromValue(types.Empty[int32]()).Fingerprint())
}

func TestValueString(t *testing.T) {
	require.Equal(t, "57", FromValue(int64(57)).String())
	require.Equal(t, "NA", FromValue(types.Empty[float32]()).String())
	require.Equal(t, "2.5", FromValue(types.NewOptional(2.5)).String())
	require.Equal(t, "[1, NA] size=2",
		FromValue(array.Create(types.NewOptional(int64(1)), types.Empty[int64]())).String())
}

func TestValueAsRef(t *testing.T) {
	v := FromValue(int64(42))
	r := v.AsRef()
	require.Same(t, v.GetType(), r.GetType())
	require.EqualValues(t, 42, UnsafeRefAs[int64](r))
}

func TestValueHoldsArray(t *testing.T) {
	a := array.Create(types.NewOptional(int32(1)), types.NewOptional(int32(2)))
	v := FromValue(a)
	require.Equal(t, "dense_array[int32]", v.GetType().Name())
	back, err := As[array.DenseArray[int32]](v)
	require.NoError(t, err)
	require.True(t, array.Equal(a, back))
}
