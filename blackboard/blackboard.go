// Package blackboard implements the scoped key-value store behavior tree
// nodes use to exchange data. Every value is a cty.Value and every key may
// carry a declared cty.Type, so port wiring can be checked while a tree is
// being built instead of when it first ticks.
//
// A blackboard has at most one parent. Keys registered through
// AddSubtreeRemapping are views into the parent scope: reads and writes of
// the internal key are redirected to the external key in the parent,
// recursively, so a subtree sees a renamed window over its enclosing tree's
// variables. Unremapped keys are local to their own scope.
package blackboard

import (
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Blackboard is a single scope. The zero value is not usable; use New or
// NewChild.
type Blackboard struct {
	mu       sync.RWMutex
	parent   *Blackboard
	storage  map[string]cty.Value
	types    map[string]cty.Type
	remapped map[string]string
}

// New creates a root scope with no parent.
func New() *Blackboard {
	return &Blackboard{
		storage:  make(map[string]cty.Value),
		types:    make(map[string]cty.Type),
		remapped: make(map[string]string),
	}
}

// NewChild creates a scope whose remapped keys resolve in parent.
func NewChild(parent *Blackboard) *Blackboard {
	bb := New()
	bb.parent = parent
	return bb
}

// Parent returns the enclosing scope, or nil for a root blackboard.
func (b *Blackboard) Parent() *Blackboard {
	return b.parent
}

// AddSubtreeRemapping declares that the internal key is an alias for the
// external key in the parent scope.
func (b *Blackboard) AddSubtreeRemapping(internal, external string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remapped[internal] = external
}

// Get returns the value stored under key. Remapped keys are resolved through
// the parent chain.
func (b *Blackboard) Get(key string) (cty.Value, bool) {
	b.mu.RLock()
	external, redirect := b.remapped[key]
	if redirect && b.parent != nil {
		b.mu.RUnlock()
		return b.parent.Get(external)
	}
	v, ok := b.storage[key]
	b.mu.RUnlock()
	return v, ok
}

// Set stores a value under key. Remapped keys are written through to the
// parent chain.
func (b *Blackboard) Set(key string, value cty.Value) {
	b.mu.Lock()
	external, redirect := b.remapped[key]
	if redirect && b.parent != nil {
		b.mu.Unlock()
		b.parent.Set(external, value)
		return
	}
	b.storage[key] = value
	b.mu.Unlock()
}

// PortType returns the type previously declared for key, following
// remappings. The second result is false when no type was declared.
func (b *Blackboard) PortType(key string) (cty.Type, bool) {
	b.mu.RLock()
	external, redirect := b.remapped[key]
	if redirect && b.parent != nil {
		b.mu.RUnlock()
		return b.parent.PortType(external)
	}
	t, ok := b.types[key]
	b.mu.RUnlock()
	return t, ok
}

// SetPortType declares the type of key, following remappings. Callers are
// expected to check PortType first; a second declaration overwrites.
func (b *Blackboard) SetPortType(key string, t cty.Type) {
	b.mu.Lock()
	external, redirect := b.remapped[key]
	if redirect && b.parent != nil {
		b.mu.Unlock()
		b.parent.SetPortType(external, t)
		return
	}
	b.types[key] = t
	b.mu.Unlock()
}

// Keys returns the locally stored keys of this scope, in no particular
// order. Remapped aliases are not included.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.storage))
	for k := range b.storage {
		keys = append(keys, k)
	}
	return keys
}
