// Package registry implements the node factory: a registry of builders and
// manifests the loader consults while validating and instantiating trees.
// Builders are registered from Go code; additional node models (manifests
// without a builder, for tooling and validation) can be loaded from HCL
// files.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/btweave/node"
)

// Builder constructs a node instance from its instance name and
// configuration.
type Builder func(name string, config node.Config) (node.TreeNode, error)

// Module is the interface node packages implement to register their
// builders into a Registry.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered builders, manifests, and HCL-declared node
// models for one factory instance. It is safe for concurrent reads once
// registration is complete; registration itself is not synchronized.
type Registry struct {
	builders  map[string]Builder
	manifests map[string]*node.Manifest
	models    map[string]*node.Manifest
	builtins  map[string]struct{}
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		builders:  make(map[string]Builder),
		manifests: make(map[string]*node.Manifest),
		models:    make(map[string]*node.Manifest),
		builtins:  make(map[string]struct{}),
	}
}

// RegisterBuilder registers a builder together with its manifest. It panics
// if the registration ID is already taken.
func (r *Registry) RegisterBuilder(manifest *node.Manifest, builder Builder) {
	id := manifest.RegistrationID
	if id == "" {
		panic("registry: manifest has an empty registration ID")
	}
	if _, exists := r.builders[id]; exists {
		panic(fmt.Sprintf("registry: builder with ID '%s' already registered", id))
	}
	slog.Debug("Registering node builder.", "id", id, "kind", manifest.Kind.String())
	r.builders[id] = builder
	r.manifests[id] = manifest
}

// RegisterBuiltin registers a builder shipped with the library. Builtin
// manifests are omitted from the TreeNodesModel section the writer emits.
func (r *Registry) RegisterBuiltin(manifest *node.Manifest, builder Builder) {
	r.RegisterBuilder(manifest, builder)
	r.builtins[manifest.RegistrationID] = struct{}{}
}

// HasBuilder reports whether a builder is registered under the ID.
func (r *Registry) HasBuilder(id string) bool {
	_, ok := r.builders[id]
	return ok
}

// Builders returns the set of registered builder IDs.
func (r *Registry) Builders() map[string]struct{} {
	out := make(map[string]struct{}, len(r.builders))
	for id := range r.builders {
		out[id] = struct{}{}
	}
	return out
}

// Manifest returns the manifest registered or declared under the ID. Models
// loaded from HCL are consulted after Go-registered manifests.
func (r *Registry) Manifest(id string) (*node.Manifest, bool) {
	if m, ok := r.manifests[id]; ok {
		return m, true
	}
	m, ok := r.models[id]
	return m, ok
}

// Manifests returns every known manifest keyed by registration ID,
// Go-registered and HCL-declared alike.
func (r *Registry) Manifests() map[string]*node.Manifest {
	out := make(map[string]*node.Manifest, len(r.manifests)+len(r.models))
	for id, m := range r.models {
		out[id] = m
	}
	for id, m := range r.manifests {
		out[id] = m
	}
	return out
}

// IsBuiltin reports whether the ID belongs to a builtin node.
func (r *Registry) IsBuiltin(id string) bool {
	_, ok := r.builtins[id]
	return ok
}

// BuiltinNodeIDs returns the IDs of all builtin nodes.
func (r *Registry) BuiltinNodeIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(r.builtins))
	for id := range r.builtins {
		out[id] = struct{}{}
	}
	return out
}

// Instantiate builds a node instance through its registered builder and
// stamps the registration ID on it.
func (r *Registry) Instantiate(instanceName, id string, config node.Config) (node.TreeNode, error) {
	builder, ok := r.builders[id]
	if !ok {
		return nil, fmt.Errorf("no builder registered with ID '%s'", id)
	}
	n, err := builder(instanceName, config)
	if err != nil {
		return nil, fmt.Errorf("builder for '%s' failed: %w", id, err)
	}
	if setter, ok := n.(interface{ SetRegistrationID(string) }); ok {
		setter.SetRegistrationID(id)
	}
	return n, nil
}
