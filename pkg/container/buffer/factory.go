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

package buffer

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/quiverdata/quiver/pkg/common/mpool"
	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/logutil"
)

// Factory is the allocator capability injected into array builders.
// Heap buffers are independently freed and safe to outlive their
// creator; arena buffers are freed en masse with the arena and must
// not outlive it.
type Factory interface {
	Alloc(nbytes int) ([]byte, error)
	Owned() bool
	Name() string
}

// HeapFactory allocates GC-managed heap memory. The zero value is
// ready to use.
type HeapFactory struct{}

func (HeapFactory) Alloc(nbytes int) ([]byte, error) {
	if nbytes < 0 {
		return nil, qerr.NewInvalidArg("alloc size", nbytes)
	}
	if nbytes == 0 {
		return nil, nil
	}
	return make([]byte, nbytes), nil
}

func (HeapFactory) Owned() bool { return true }

func (HeapFactory) Name() string { return "heap" }

const defaultChunkSize = 64 * 1024

// ArenaFactory is a bump allocator over mpool-charged chunks. All
// buffers it hands out share one lifetime: Release frees every chunk
// at once, and using any buffer afterwards is a caller error the
// arena cannot detect.
type ArenaFactory struct {
	pool      *mpool.MPool
	chunkSize int
	chunks    [][]byte
	cur       []byte
	off       int
	released  bool
	mu        sync.Mutex
}

func NewArena(pool *mpool.MPool) *ArenaFactory {
	return NewArenaWithChunkSize(pool, defaultChunkSize)
}

func NewArenaWithChunkSize(pool *mpool.MPool, chunkSize int) *ArenaFactory {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &ArenaFactory{pool: pool, chunkSize: chunkSize}
}

func (a *ArenaFactory) Alloc(nbytes int) ([]byte, error) {
	if nbytes < 0 {
		return nil, qerr.NewInvalidArg("alloc size", nbytes)
	}
	if nbytes == 0 {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil, qerr.NewPrecondition("arena already released")
	}
	// Keep bump offsets 8-byte aligned so typed views stay aligned.
	need := (nbytes + 7) &^ 7
	if a.off+need > len(a.cur) {
		size := a.chunkSize
		if need > size {
			size = need
		}
		chunk, err := a.pool.Alloc(size)
		if err != nil {
			return nil, err
		}
		a.chunks = append(a.chunks, chunk)
		a.cur = chunk
		a.off = 0
	}
	out := a.cur[a.off : a.off+nbytes : a.off+nbytes]
	a.off += need
	return out, nil
}

func (a *ArenaFactory) Owned() bool { return false }

func (a *ArenaFactory) Name() string { return "arena" }

// Release frees every chunk back to the pool. Buffers handed out by
// this arena are invalid from here on.
func (a *ArenaFactory) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	for _, chunk := range a.chunks {
		a.pool.Free(chunk)
	}
	logutil.Debug("arena released",
		zap.Int("chunks", len(a.chunks)), zap.String("pool", a.pool.Tag()))
	a.chunks = nil
	a.cur = nil
	a.off = 0
	a.released = true
}

func sizeOf[T any](t T) uintptr {
	return unsafe.Sizeof(t)
}
