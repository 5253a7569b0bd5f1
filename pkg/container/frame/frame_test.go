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

package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quiverdata/quiver/pkg/common/mpool"
	"github.com/quiverdata/quiver/pkg/container/types"
)

func TestLayoutOffsets(t *testing.T) {
	b := NewLayoutBuilder()
	s1 := AddSlot[bool](b)
	s2 := AddSlot[int64](b)
	s3 := AddSlot[int32](b)
	l := b.Build()

	require.Equal(t, 0, s1.ByteOffset())
	require.Equal(t, 8, s2.ByteOffset(), "int64 aligns to 8")
	require.Equal(t, 16, s3.ByteOffset())
	require.Equal(t, 24, l.Size(), "size rounds up to alignment")
	require.Equal(t, 8, l.Alignment())
	require.Equal(t, 3, l.SlotCount())
}

func TestLayoutBuilderConsumed(t *testing.T) {
	b := NewLayoutBuilder()
	AddSlot[int64](b)
	b.Build()
	require.Panics(t, func() { AddSlot[int32](b) })
	require.Panics(t, func() { b.Build() })
}

func TestBoxedSlots(t *testing.T) {
	b := NewLayoutBuilder()
	s1 := AddSlot[string](b)
	s2 := AddSlot[int64](b)
	s3 := AddSlot[types.Optional[string]](b)
	l := b.Build()

	require.True(t, s1.IsBoxed())
	require.False(t, s2.IsBoxed())
	require.True(t, s3.IsBoxed())
	require.Equal(t, 2, l.RefSlotCount())
	require.Equal(t, 8, l.Size(), "boxed slots take no byte-region space")
}

func TestFrameGetSet(t *testing.T) {
	b := NewLayoutBuilder()
	si := AddSlot[int64](b)
	sf := AddSlot[float64](b)
	so := AddSlot[types.Optional[int32]](b)
	ss := AddSlot[string](b)
	l := b.Build()

	pool := mpool.MustNew("test-frame-getset")
	defer mpool.DeleteMPool(pool)
	alloc, err := NewAllocation(l, pool)
	require.NoError(t, err)
	defer alloc.Free()
	f := alloc.Ptr()

	// A zeroed frame is valid: optionals read as missing, boxed cells
	// as zero values.
	require.False(t, Get(f.Const(), so).Present)
	require.Equal(t, "", Get(f.Const(), ss))
	require.EqualValues(t, 0, Get(f.Const(), si))

	Set(f, si, int64(-7))
	Set(f, sf, 2.5)
	Set(f, so, types.NewOptional(int32(57)))
	Set(f, ss, "hello")

	require.EqualValues(t, -7, Get(f.Const(), si))
	require.Equal(t, 2.5, Get(f.Const(), sf))
	require.Equal(t, types.NewOptional(int32(57)), GetMut(f, so))
	require.Equal(t, "hello", Get(f.Const(), ss))
}

func TestZeroSizeSlot(t *testing.T) {
	pool := mpool.MustNew("test-frame-unit")
	defer mpool.DeleteMPool(pool)

	// A lone unit slot still yields an addressable frame.
	b := NewLayoutBuilder()
	su := AddSlot[types.Unit](b)
	l := b.Build()
	require.GreaterOrEqual(t, l.Size(), 1)

	alloc, err := NewAllocation(l, pool)
	require.NoError(t, err)
	defer alloc.Free()
	f := alloc.Ptr()
	Set(f, su, types.Unit{})
	require.Equal(t, types.Unit{}, Get(f.Const(), su))

	// A unit slot at the end of the byte region reads back too.
	b2 := NewLayoutBuilder()
	si := AddSlot[int64](b2)
	su2 := AddSlot[types.Unit](b2)
	l2 := b2.Build()
	require.Greater(t, su2.ByteOffset(), si.ByteOffset())

	alloc2, err := NewAllocation(l2, pool)
	require.NoError(t, err)
	defer alloc2.Free()
	f2 := alloc2.Ptr()
	Set(f2, si, int64(7))
	require.Equal(t, types.Unit{}, Get(f2.Const(), su2))
	require.EqualValues(t, 7, Get(f2.Const(), si))
}

func TestTypedSlotRoundTrip(t *testing.T) {
	b := NewLayoutBuilder()
	s := AddSlot[int64](b)
	b.Build()

	ts := FromSlot(s)
	require.Same(t, types.GetQType[int64](), ts.QType())
	require.Equal(t, s.ByteOffset(), ts.ByteOffset())

	back, err := ToSlot[int64](ts)
	require.NoError(t, err)
	require.Equal(t, s, back)

	_, err = ToSlot[float64](ts)
	require.EqualError(t, err, "type mismatch: expected float64, got int64")

	require.Equal(t, s, UnsafeToSlot[int64](ts))
}

func TestSubSlotDecomposition(t *testing.T) {
	b := NewLayoutBuilder()
	AddSlot[int8](b) // force a non-zero parent offset
	so := AddSlot[types.Optional[int32]](b)
	su := AddSlot[types.Optional[types.Unit]](b)
	b.Build()

	ts := FromSlot(so)
	require.Equal(t, 2, ts.SubSlotCount())
	presence := ts.SubSlot(0)
	require.Same(t, types.GetQType[bool](), presence.QType())
	require.Equal(t, ts.ByteOffset(), presence.ByteOffset())
	value := ts.SubSlot(1)
	require.Same(t, types.GetQType[int32](), value.QType())
	require.Greater(t, value.ByteOffset(), ts.ByteOffset())

	// optional[unit] is a bare presence flag.
	tu := FromSlot(su)
	require.Equal(t, 1, tu.SubSlotCount())
	require.Same(t, types.GetQType[bool](), tu.SubSlot(0).QType())
}

func TestSubSlotWritesThrough(t *testing.T) {
	b := NewLayoutBuilder()
	so := AddSlot[types.Optional[int64]](b)
	l := b.Build()

	pool := mpool.MustNew("test-frame-subslot")
	defer mpool.DeleteMPool(pool)
	alloc, err := NewAllocation(l, pool)
	require.NoError(t, err)
	defer alloc.Free()
	f := alloc.Ptr()

	ts := FromSlot(so)
	presence := UnsafeToSlot[bool](ts.SubSlot(0))
	value := UnsafeToSlot[int64](ts.SubSlot(1))

	Set(f, value, 42)
	require.False(t, Get(f.Const(), so).Present, "value write alone stays missing")
	Set(f, presence, true)
	require.Equal(t, types.NewOptional(int64(42)), Get(f.Const(), so))
}

func TestBoxedSlotDoesNotDecompose(t *testing.T) {
	b := NewLayoutBuilder()
	so := AddSlot[types.Optional[string]](b)
	b.Build()
	require.Equal(t, 0, FromSlot(so).SubSlotCount())
}

func TestAllocationBatch(t *testing.T) {
	b := NewLayoutBuilder()
	s := AddSlot[int64](b)
	l := b.Build()

	pool := mpool.MustNew("test-frame-batch")
	defer mpool.DeleteMPool(pool)
	batch, err := NewAllocationBatch(l, 4, pool)
	require.NoError(t, err)
	require.Equal(t, 4, batch.Len())

	ptrs := batch.Ptrs()
	for i, p := range ptrs {
		Set(p, s, int64(i*10))
	}
	for i, p := range batch.ConstPtrs() {
		require.EqualValues(t, i*10, Get(p, s), "frames are independent")
	}
	batch.Free()
	require.EqualValues(t, 0, pool.CurrNB())
}
