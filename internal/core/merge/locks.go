package merge

import (
	"sort"
	"sync"
)

// keyedLocks serializes merge/undo operations per person id. Pairs are
// always locked in sorted order so two overlapping merges cannot deadlock.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(id string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	return m
}

func (k *keyedLocks) lockPair(a, b string) func() {
	ids := []string{a, b}
	sort.Strings(ids)
	first, second := k.get(ids[0]), k.get(ids[1])
	first.Lock()
	if second != first {
		second.Lock()
	}
	return func() {
		if second != first {
			second.Unlock()
		}
		first.Unlock()
	}
}
