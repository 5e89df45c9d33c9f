package arena

import (
	"sync"

	"github.com/dolthub/maphash"
)

// Registry is an optional named-arena-set lookup table: an application
// that keeps several independently-configured Allocators around (one per
// subsystem, say) can register each under a name here instead of
// threading every *Allocator through its own call chain by hand. It
// mirrors sched.nameIndex's bucketed, maphash.Hasher-keyed table rather
// than a built-in map; the table is guarded by a sync.RWMutex, so lookups
// take a read lock and may run concurrently with each other.
type Registry struct {
	hasher  maphash.Hasher[string]
	mu      sync.RWMutex
	buckets [][]registryEntry
}

type registryEntry struct {
	name string
	a    *Allocator
}

// NewRegistry returns an empty Registry with bucketCount hash buckets.
func NewRegistry(bucketCount int) *Registry {
	if bucketCount < 1 {
		bucketCount = 1
	}
	return &Registry{
		hasher:  maphash.NewHasher[string](),
		buckets: make([][]registryEntry, bucketCount),
	}
}

func (r *Registry) bucketFor(name string) int {
	return int(r.hasher.Hash(name) % uint64(len(r.buckets)))
}

// Register names a, replacing any Allocator previously registered under
// name.
func (r *Registry) Register(name string, a *Allocator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.bucketFor(name)
	for i, e := range r.buckets[b] {
		if e.name == name {
			r.buckets[b][i].a = a
			return
		}
	}
	r.buckets[b] = append(r.buckets[b], registryEntry{name: name, a: a})
}

// Lookup resolves name to its registered Allocator, if any.
func (r *Registry) Lookup(name string) (*Allocator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.buckets[r.bucketFor(name)] {
		if e.name == name {
			return e.a, true
		}
	}
	return nil, false
}

// Unregister removes name's mapping, if any.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.bucketFor(name)
	for i, e := range r.buckets[b] {
		if e.name == name {
			r.buckets[b] = append(r.buckets[b][:i], r.buckets[b][i+1:]...)
			return
		}
	}
}
