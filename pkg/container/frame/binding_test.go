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

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/types"
)

func buildSlots() map[string]TypedSlot {
	b := NewLayoutBuilder()
	x := AddSlot[int64](b)
	y := AddSlot[float64](b)
	s := AddSlot[string](b)
	b.Build()
	return map[string]TypedSlot{
		"x": FromSlot(x),
		"y": FromSlot(y),
		"s": FromSlot(s),
	}
}

func TestFindSlotsAndVerifyTypes(t *testing.T) {
	available := buildSlots()
	out, err := FindSlotsAndVerifyTypes(map[string]*types.QType{
		"x": types.GetQType[int64](),
		"s": types.GetQType[string](),
	}, available)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Same(t, types.GetQType[int64](), out["x"].QType())
}

func TestFindSlotsAggregatesErrors(t *testing.T) {
	available := buildSlots()
	_, err := FindSlotsAndVerifyTypes(map[string]*types.QType{
		"x": types.GetQType[float64](), // mismatch
		"a": types.GetQType[int64](),   // missing
		"b": types.GetQType[bool](),    // missing
	}, available)
	require.True(t, qerr.IsErrCode(err, qerr.ErrPrecondition))
	require.Contains(t, err.Error(), "slot types mismatch: {x: expected float64, got int64}")
	require.Contains(t, err.Error(), "missing slots: {a:int64, b:bool}")
}

func TestFindSlotsNoPartialResult(t *testing.T) {
	available := buildSlots()
	out, err := FindSlotsAndVerifyTypes(map[string]*types.QType{
		"x": types.GetQType[int64](),
		"a": types.GetQType[int64](),
	}, available)
	require.Error(t, err)
	require.Nil(t, out)
}

func TestMaybeFindSlots(t *testing.T) {
	available := buildSlots()
	out, err := MaybeFindSlotsAndVerifyTypes(map[string]*types.QType{
		"x": types.GetQType[int64](),
		"a": types.GetQType[int64](), // missing is fine here
	}, available)
	require.NoError(t, err)
	require.Len(t, out, 1)

	// Mismatch is still an error.
	_, err = MaybeFindSlotsAndVerifyTypes(map[string]*types.QType{
		"y": types.GetQType[int32](),
	}, available)
	require.True(t, qerr.IsErrCode(err, qerr.ErrPrecondition))
}

func TestVerifySlotTypes(t *testing.T) {
	available := buildSlots()
	require.NoError(t, VerifySlotTypes(map[string]*types.QType{
		"x": types.GetQType[int64](),
		"y": types.GetQType[float64](),
		"s": types.GetQType[string](),
	}, available))

	// Extra slots are rejected.
	err := VerifySlotTypes(map[string]*types.QType{
		"x": types.GetQType[int64](),
	}, available)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected slots: {s, y}")
}
