package learning

import (
    "sort"
    "sync"
)

// keyLock hands out one mutex per coefficient key. Lock takes a set of keys
// in sorted order so two overlapping batches cannot deadlock.
type keyLock struct {
    mu    sync.Mutex
    locks map[string]*sync.Mutex
}

func newKeyLock() *keyLock {
    return &keyLock{locks: map[string]*sync.Mutex{}}
}

func (k *keyLock) Lock(keys ...string) (unlock func()) {
    sorted := append([]string(nil), keys...)
    sort.Strings(sorted)

    held := make([]*sync.Mutex, 0, len(sorted))
    for i, key := range sorted {
        if i > 0 && key == sorted[i-1] {
            continue
        }
        m := k.get(key)
        m.Lock()
        held = append(held, m)
    }
    return func() {
        for i := len(held) - 1; i >= 0; i-- {
            held[i].Unlock()
        }
    }
}

func (k *keyLock) get(key string) *sync.Mutex {
    k.mu.Lock()
    defer k.mu.Unlock()
    m, ok := k.locks[key]
    if !ok {
        m = &sync.Mutex{}
        k.locks[key] = m
    }
    return m
}
