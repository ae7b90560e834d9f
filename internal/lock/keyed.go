// Package lock provides in-process advisory locks keyed by string.
package lock

import "sync"

// RegistryKey guards registry check-then-write sequences.
const RegistryKey = "registry"

// ProjectKey is the key guarding the project rooted at root. Project keys
// never equal RegistryKey, whatever the root.
func ProjectKey(root string) string {
	return "project:" + root
}

// FlipKey is the key guarding flip runs into one counterpart class.
func FlipKey(root, class string) string {
	return "flip:" + root + ":" + class
}

// Keyed hands out one mutex per key. Entries are dropped when no holder
// or waiter remains.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty keyed lock table.
func New() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock blocks until the key is free and returns the matching unlock func.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
