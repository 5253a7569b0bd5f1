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

package batchcopy

import (
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/container/array"
	"github.com/quiverdata/quiver/pkg/container/types"
)

func TestRunShardedCoversAllRows(t *testing.T) {
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	const rows = 1000
	covered := make([]int32, rows)
	var mu sync.Mutex
	var shards int

	err = RunSharded(pool, rows, 64, func(start, end int) error {
		mu.Lock()
		shards++
		mu.Unlock()
		for i := start; i < end; i++ {
			covered[i]++
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 16, shards, "ceil(1000/64)")
	for i, c := range covered {
		require.EqualValues(t, 1, c, "row %d copied exactly once", i)
	}
}

func TestRunShardedPropagatesError(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	boom := qerr.NewInternal("shard failed")
	err = RunSharded(pool, 100, 10, func(start, end int) error {
		if start == 50 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestRunShardedValidation(t *testing.T) {
	pool, err := ants.NewPool(1)
	require.NoError(t, err)
	defer pool.Release()

	require.Error(t, RunSharded(pool, 10, 0, func(int, int) error { return nil }))
	require.Error(t, RunSharded(pool, -1, 10, func(int, int) error { return nil }))
	require.NoError(t, RunSharded(pool, 0, 10, func(int, int) error { return nil }))
}

func TestRunShardedDrivesCopiers(t *testing.T) {
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	const rows = 500
	bld := array.NewBuilder[int64](rows)
	for i := 0; i < rows; i++ {
		if i%7 != 0 {
			bld.Set(i, int64(i))
		}
	}
	src := bld.Build()

	// Each shard compacts its own slice with an independent sparse
	// conversion; no shared copier state.
	out := make([]types.Optional[int64], rows)
	err = RunSharded(pool, rows, 100, func(start, end int) error {
		window := src.Slice(start, end)
		for i := 0; i < window.Len(); i++ {
			out[start+i] = window.Get(i)
		}
		return nil
	})
	require.NoError(t, err)
	for i := 0; i < rows; i++ {
		require.True(t, types.OptionalEqual(src.Get(i), out[i]), "row %d", i)
	}
}
