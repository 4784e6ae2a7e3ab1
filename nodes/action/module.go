// Package action provides the builtin leaf nodes: AlwaysSuccess,
// AlwaysFailure, and SetBlackboard.
package action

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/btweave/node"
	"github.com/vk/btweave/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the builtin leaf builders with the factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "AlwaysSuccess", Kind: node.KindAction, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return newConstant(name, config, node.StatusSuccess), nil
		})
	r.RegisterBuiltin(
		&node.Manifest{RegistrationID: "AlwaysFailure", Kind: node.KindAction, Ports: map[string]node.PortSpec{}},
		func(name string, config node.Config) (node.TreeNode, error) {
			return newConstant(name, config, node.StatusFailure), nil
		})
	r.RegisterBuiltin(
		&node.Manifest{
			RegistrationID: "SetBlackboard",
			Kind:           node.KindAction,
			Ports: map[string]node.PortSpec{
				"value":      {Direction: node.PortInput, Type: cty.String},
				"output_key": {Direction: node.PortOutput, Type: cty.String},
			},
		},
		func(name string, config node.Config) (node.TreeNode, error) {
			return NewSetBlackboard(name, config), nil
		})
}

// constant is a leaf that always returns the same status.
type constant struct {
	node.Base
	status node.Status
}

func newConstant(name string, config node.Config, status node.Status) *constant {
	return &constant{Base: node.NewBase(name, node.KindAction, config), status: status}
}

func (c *constant) Tick(ctx context.Context) (node.Status, error) {
	c.SetStatus(c.status)
	return c.status, nil
}

// SetBlackboard copies its "value" input to the blackboard key remapped by
// its "output_key" port.
type SetBlackboard struct {
	node.Base
}

// NewSetBlackboard creates a SetBlackboard action node.
func NewSetBlackboard(name string, config node.Config) *SetBlackboard {
	return &SetBlackboard{Base: node.NewBase(name, node.KindAction, config)}
}

// Tick reads the value port and writes it through the output port.
func (n *SetBlackboard) Tick(ctx context.Context) (node.Status, error) {
	v, err := n.Config().InputValue("value", cty.String)
	if err != nil {
		n.SetStatus(node.StatusFailure)
		return node.StatusFailure, err
	}
	if err := n.Config().SetOutput("output_key", v); err != nil {
		n.SetStatus(node.StatusFailure)
		return node.StatusFailure, err
	}
	n.SetStatus(node.StatusSuccess)
	return node.StatusSuccess, nil
}
