// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package emitter implements a synchronous, single-threaded event emitter.
//
// Listeners are registered for a key and invoked in registration order each
// time an event is emitted for that key. Delivery is synchronous: Emit does
// not return until every listener has been called, or one has failed.
// Errors reported by listeners are returned to the caller of Emit.
package emitter

import "slices"

// A Handle identifies a registered listener.
type Handle uint64

type listener[E any] struct {
	id   Handle
	fn   func(E) error
	once bool
}

// An Emitter delivers events of type E to listeners registered by key.
// A zero Emitter is ready for use. An Emitter is not safe for concurrent use.
type Emitter[K comparable, E any] struct {
	last Handle
	subs map[K][]listener[E]
	keys map[Handle]K
}

// New constructs a new empty Emitter.
func New[K comparable, E any]() *Emitter[K, E] { return new(Emitter[K, E]) }

// On registers fn to be called for each event emitted for key, and returns a
// handle that can be passed to Off to remove it.
func (e *Emitter[K, E]) On(key K, fn func(E) error) Handle { return e.add(key, fn, false) }

// Once registers fn to be called for only the next event emitted for key.
func (e *Emitter[K, E]) Once(key K, fn func(E) error) Handle { return e.add(key, fn, true) }

func (e *Emitter[K, E]) add(key K, fn func(E) error, once bool) Handle {
	if e.subs == nil {
		e.subs = make(map[K][]listener[E])
		e.keys = make(map[Handle]K)
	}
	e.last++
	e.subs[key] = append(e.subs[key], listener[E]{id: e.last, fn: fn, once: once})
	e.keys[e.last] = key
	return e.last
}

// Off removes the listener identified by h, and reports whether it was
// registered.
func (e *Emitter[K, E]) Off(h Handle) bool {
	key, ok := e.keys[h]
	if !ok {
		return false
	}
	delete(e.keys, h)
	e.subs[key] = slices.DeleteFunc(e.subs[key], func(l listener[E]) bool { return l.id == h })
	if len(e.subs[key]) == 0 {
		delete(e.subs, key)
	}
	return true
}

// Clear removes all the listeners registered for key.
func (e *Emitter[K, E]) Clear(key K) {
	for _, l := range e.subs[key] {
		delete(e.keys, l.id)
	}
	delete(e.subs, key)
}

// ClearAll removes all listeners for all keys.
func (e *Emitter[K, E]) ClearAll() {
	clear(e.subs)
	clear(e.keys)
}

// Len reports the number of listeners registered for key.
func (e *Emitter[K, E]) Len(key K) int { return len(e.subs[key]) }

// Emit calls each listener registered for key with v, in registration order.
// If a listener reports an error, Emit returns that error without calling
// the remaining listeners.
//
// The set of listeners called is fixed when Emit begins; listeners added or
// removed by a listener take effect for the next event.
func (e *Emitter[K, E]) Emit(key K, v E) error {
	ls := e.subs[key]
	if len(ls) == 0 {
		return nil
	}
	ls = slices.Clone(ls)
	for _, l := range ls {
		if l.once {
			e.Off(l.id)
		}
		if err := l.fn(v); err != nil {
			return err
		}
	}
	return nil
}
