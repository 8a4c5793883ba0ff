package envfile

import (
	"iter"
	"sort"
)

// Env is an ordered key/value mapping. Keys iterate in insertion order;
// overwriting a key keeps its position.
type Env struct {
	keys   []string
	values map[string]string
}

func NewEnv() *Env {
	return &Env{values: make(map[string]string)}
}

// EnvFromMap builds an Env with keys in sorted order.
func EnvFromMap(m map[string]string) *Env {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := NewEnv()
	for _, k := range keys {
		e.Set(k, m[k])
	}
	return e
}

func (e *Env) Get(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.values[key]
	return v, ok
}

func (e *Env) Has(key string) bool {
	_, ok := e.Get(key)
	return ok
}

func (e *Env) Set(key, value string) {
	if e.values == nil {
		e.values = make(map[string]string)
	}
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

func (e *Env) Delete(key string) bool {
	if _, ok := e.values[key]; !ok {
		return false
	}
	delete(e.values, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
	return true
}

func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

func (e *Env) Keys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, len(e.keys))
	copy(keys, e.keys)
	return keys
}

func (e *Env) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if e == nil {
			return
		}
		for _, k := range e.keys {
			if !yield(k, e.values[k]) {
				return
			}
		}
	}
}

func (e *Env) Clone() *Env {
	c := &Env{
		keys:   make([]string, len(e.Keys())),
		values: make(map[string]string, e.Len()),
	}
	if e == nil {
		return c
	}
	copy(c.keys, e.keys)
	for k, v := range e.values {
		c.values[k] = v
	}
	return c
}

// Map returns the values as a plain map.
func (e *Env) Map() map[string]string {
	m := make(map[string]string, e.Len())
	for k, v := range e.All() {
		m[k] = v
	}
	return m
}
