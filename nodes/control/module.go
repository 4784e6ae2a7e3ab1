// Package control provides the builtin control nodes: Sequence,
// SequenceStar, Fallback, and FallbackStar.
package control

import (
	"github.com/vk/btweave/node"
	"github.com/vk/btweave/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the builtin control builders with the factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "Sequence", Kind: node.KindControl, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewSequence(name, config), nil
		})
	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "SequenceStar", Kind: node.KindControl, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewSequenceStar(name, config), nil
		})
	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "Fallback", Kind: node.KindControl, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewFallback(name, config), nil
		})
	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "FallbackStar", Kind: node.KindControl, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewFallbackStar(name, config), nil
		})
}
