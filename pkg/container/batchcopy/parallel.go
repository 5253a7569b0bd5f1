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

	"github.com/panjf2000/ants/v2"

	"github.com/quiverdata/quiver/pkg/common/qerr"
)

// RunSharded splits [0, rowCount) into shards of at most shardRows
// rows and runs fn(start, end) for each on the worker pool. Shards are
// disjoint, so each shard may drive its own copier without locking.
// The first error wins; all shards still run to completion.
func RunSharded(pool *ants.Pool, rowCount, shardRows int, fn func(start, end int) error) error {
	if shardRows <= 0 {
		return qerr.NewInvalidArg("shard rows", shardRows)
	}
	if rowCount < 0 {
		return qerr.NewInvalidArg("row count", rowCount)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < rowCount; start += shardRows {
		end := start + shardRows
		if end > rowCount {
			end = rowCount
		}
		start, end := start, end
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := fn(start, end); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(err)
		}
	}
	wg.Wait()
	return firstErr
}
