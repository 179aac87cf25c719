package namelock

import (
	"strings"
	"sync"

	"github.com/OneOfOne/xxhash"
)

const shardCount = 64

// Map serializes work keyed by name. Keys are case-folded before hashing,
// so "Mito" and "mito" contend on the same lock. Two distinct keys may share
// a shard; that costs throughput, never correctness.
type Map struct {
	shards [shardCount]sync.Mutex
}

func New() *Map {
	return &Map{}
}

func (m *Map) Lock(key string) {
	m.shard(key).Lock()
}

func (m *Map) Unlock(key string) {
	m.shard(key).Unlock()
}

func (m *Map) shard(key string) *sync.Mutex {
	h := xxhash.ChecksumString64(strings.ToLower(key))
	return &m.shards[h%shardCount]
}
