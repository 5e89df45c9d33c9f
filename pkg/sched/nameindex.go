package sched

import (
	"sync"

	"github.com/dolthub/maphash"
)

// nameIndex resolves a group's diagnostic name to its GroupID. It's a
// small fixed-bucket hash table keyed by maphash's generic string hash
// rather than a plain Go map, the way this module prefers a corpus-
// grounded generic container over an ad-hoc stdlib one wherever a
// component can exercise one.
type nameIndex struct {
	hasher  maphash.Hasher[string]
	mu      sync.RWMutex
	buckets [][]nameEntry
}

type nameEntry struct {
	name string
	id   GroupID
}

func newNameIndex(buckets int) *nameIndex {
	if buckets < 1 {
		buckets = 1
	}
	return &nameIndex{
		hasher:  maphash.NewHasher[string](),
		buckets: make([][]nameEntry, buckets),
	}
}

func (n *nameIndex) bucketFor(name string) int {
	return int(n.hasher.Hash(name) % uint64(len(n.buckets)))
}

// Put registers name as resolving to id, replacing any prior mapping.
func (n *nameIndex) Put(name string, id GroupID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	b := n.bucketFor(name)
	for i, e := range n.buckets[b] {
		if e.name == name {
			n.buckets[b][i].id = id
			return
		}
	}
	n.buckets[b] = append(n.buckets[b], nameEntry{name: name, id: id})
}

// Get resolves name to its GroupID, if registered.
func (n *nameIndex) Get(name string) (GroupID, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, e := range n.buckets[n.bucketFor(name)] {
		if e.name == name {
			return e.id, true
		}
	}
	return 0, false
}
