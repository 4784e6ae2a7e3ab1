// Package decorator provides the builtin decorator nodes: Inverter and
// Timeout.
package decorator

import (
	"github.com/vk/btweave/internal/timerq"
	"github.com/vk/btweave/node"
	"github.com/vk/btweave/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package. Timers
// is the scheduler the Timeout decorator uses; when nil, the module creates
// a private one at registration time.
type Module struct {
	Timers *timerq.Queue
}

// Register registers the builtin decorator builders with the factory.
func (m *Module) Register(r *registry.Registry) {
	timers := m.Timers
	if timers == nil {
		timers = timerq.New()
	}

	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "Inverter", Kind: node.KindDecorator, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewInverter(name, config), nil
		})
	r.RegisterBuiltin(
		&node.Manifest{
			RegistrationID: "Timeout",
			Kind:           node.KindDecorator,
			Ports: map[string]node.PortSpec{
				"msec": {Direction: node.PortInput, Type: cty.Number},
			},
		},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewTimeout(name, config, timers), nil
		})
}
