package services

import (
	"context"
	"sync"
)

// loadScopes ties in-flight loads to a view. Starting a load of a view cancels
// the previous load of the same view.
type loadScopes struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	gens    map[string]uint64
}

func newLoadScopes() *loadScopes {
	return &loadScopes{cancels: map[string]context.CancelFunc{}, gens: map[string]uint64{}}
}

// begin cancels the running load of key and returns the context of the new
// one. The returned release must be called when the load finishes.
func (l *loadScopes) begin(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	if prev, ok := l.cancels[key]; ok {
		prev()
	}
	l.gens[key]++
	gen := l.gens[key]
	l.cancels[key] = cancel
	l.mu.Unlock()

	return ctx, func() {
		l.mu.Lock()
		if l.gens[key] == gen {
			delete(l.cancels, key)
			delete(l.gens, key)
		}
		l.mu.Unlock()
		cancel()
	}
}

// keyedMutex serializes state mutations per caller.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*refMutex{}}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
