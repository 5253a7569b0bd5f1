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

// Package mpool implements named, accounted memory pools. A pool does
// not own an arena of its own; it tracks how many bytes are live and
// enforces a capacity, so runaway allocations fail with OOM instead of
// taking the process down. Frames and arena buffers allocate through a
// pool.
package mpool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/logutil"
)

// NoCap means the pool has no capacity limit.
const NoCap int64 = 0

type MPool struct {
	tag     string
	cap     int64
	currNB  atomic.Int64
	highNB  atomic.Int64
	allocs  atomic.Int64
	frees   atomic.Int64
}

var (
	mu    sync.Mutex
	pools = make(map[string]*MPool)

	globalOnce sync.Once
	globalPool *MPool
)

// NewMPool creates a named pool with the given capacity in bytes
// (NoCap for unlimited). Creating two pools with the same tag is an
// error; pools live for the process, DeleteMPool removes one.
func NewMPool(tag string, cap int64) (*MPool, error) {
	if cap < 0 {
		return nil, qerr.NewInvalidArg("mpool capacity", cap)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := pools[tag]; ok {
		return nil, qerr.NewDuplicate("mpool %s already exists", tag)
	}
	m := &MPool{tag: tag, cap: cap}
	pools[tag] = m
	logutil.Debug("mpool created", zap.String("tag", tag), zap.Int64("cap", cap))
	return m, nil
}

// MustNew is NewMPool that panics, for tests and static setup.
func MustNew(tag string) *MPool {
	m, err := NewMPool(tag, NoCap)
	if err != nil {
		panic(err)
	}
	return m
}

func DeleteMPool(m *MPool) {
	if m == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	delete(pools, m.tag)
	if n := m.currNB.Load(); n != 0 {
		logutil.Warn("mpool deleted with live bytes",
			zap.String("tag", m.tag), zap.Int64("live", n))
	}
}

// MustGlobal returns the process-wide default pool (unlimited cap).
func MustGlobal() *MPool {
	globalOnce.Do(func() {
		var err error
		globalPool, err = NewMPool("global", NoCap)
		if err != nil {
			panic(err)
		}
	})
	return globalPool
}

func (m *MPool) Tag() string {
	return m.tag
}

func (m *MPool) Cap() int64 {
	return m.cap
}

// CurrNB returns the number of live bytes charged to the pool.
func (m *MPool) CurrNB() int64 {
	return m.currNB.Load()
}

// Alloc returns a zeroed byte slice of size n charged to the pool.
func (m *MPool) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, qerr.NewInvalidArg("alloc size", n)
	}
	if n == 0 {
		return nil, nil
	}
	curr := m.currNB.Add(int64(n))
	if m.cap != NoCap && curr > m.cap {
		m.currNB.Add(-int64(n))
		return nil, qerr.NewOOM(int64(n), m.cap-m.currNB.Load())
	}
	for {
		high := m.highNB.Load()
		if curr <= high || m.highNB.CompareAndSwap(high, curr) {
			break
		}
	}
	m.allocs.Add(1)
	return make([]byte, n), nil
}

// Free returns bytes to the pool's accounting. Freeing nil is a no-op.
// The slice must be exactly one returned by Alloc.
func (m *MPool) Free(buf []byte) {
	if buf == nil {
		return
	}
	m.frees.Add(1)
	if m.currNB.Add(-int64(cap(buf))) < 0 {
		panic(qerr.NewInternal("mpool %s: negative live bytes, double free", m.tag))
	}
}

// Grow reallocates buf to size n, preserving content. The old buffer
// is freed on success.
func (m *MPool) Grow(buf []byte, n int) ([]byte, error) {
	if n <= cap(buf) {
		return buf[:n], nil
	}
	nb, err := m.Alloc(n)
	if err != nil {
		return nil, err
	}
	copy(nb, buf)
	m.Free(buf)
	return nb, nil
}

func (m *MPool) Stats() string {
	return fmt.Sprintf("mpool %s: live=%d high=%d allocs=%d frees=%d",
		m.tag, m.currNB.Load(), m.highNB.Load(), m.allocs.Load(), m.frees.Load())
}
