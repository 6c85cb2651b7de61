// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import "fmt"

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value any
}

// An Object is a JSON object whose members are kept in the order in which
// their keys were first seen. A zero Object is empty and ready for use.
//
// The methods of Object maintain an index of keys. If Members is modified
// directly, the index is rebuilt on the next lookup.
type Object struct {
	Members []Member

	index map[string]int
}

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.Members) }

// Find returns the member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	if i := o.lookup(key); i >= 0 {
		return &o.Members[i]
	}
	return nil
}

// Get returns the value of the member with the given key, and reports whether
// such a member exists.
func (o *Object) Get(key string) (any, bool) {
	if i := o.lookup(key); i >= 0 {
		return o.Members[i].Value, true
	}
	return nil, false
}

// Set sets the value of the member with the given key. If o already has a
// member with that key, its value is replaced in place; otherwise a new member
// is added at the end.
func (o *Object) Set(key string, value any) {
	if i := o.lookup(key); i >= 0 {
		o.Members[i].Value = value
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.Members)
	o.Members = append(o.Members, Member{Key: key, Value: value})
}

// Keys returns the keys of o in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Members))
	for i, m := range o.Members {
		keys[i] = m.Key
	}
	return keys
}

// Map returns a map of the members of o. Member values are not converted.
func (o *Object) Map() map[string]any {
	m := make(map[string]any, len(o.Members))
	for _, mem := range o.Members {
		m[mem.Key] = mem.Value
	}
	return m
}

func (o *Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o.Members)) }

func (o *Object) lookup(key string) int {
	if len(o.index) != len(o.Members) {
		o.reindex()
	}
	if i, ok := o.index[key]; ok && i < len(o.Members) && o.Members[i].Key == key {
		return i
	}
	return -1
}

func (o *Object) reindex() {
	o.index = make(map[string]int, len(o.Members))
	for i, m := range o.Members {
		if _, ok := o.index[m.Key]; !ok {
			o.index[m.Key] = i
		}
	}
}

// Plain returns a copy of the materialized value v in which every *Object has
// been replaced by an equivalent map[string]any, recursively. This is the
// representation produced by encoding/json when decoding into an any.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, len(t.Members))
		for _, mem := range t.Members {
			m[mem.Key] = Plain(mem.Value)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, elt := range t {
			m[k] = Plain(elt)
		}
		return m
	case []any:
		a := make([]any, len(t))
		for i, elt := range t {
			a[i] = Plain(elt)
		}
		return a
	default:
		return v
	}
}
