package decorator

import (
	"context"

	"github.com/vk/btweave/node"
)

// Inverter swaps its child's Success and Failure; Running passes through.
type Inverter struct {
	node.DecoratorBase
}

// NewInverter creates an Inverter decorator node.
func NewInverter(name string, config node.Config) *Inverter {
	return &Inverter{DecoratorBase: node.NewDecoratorBase(name, config)}
}

// Tick ticks the child and inverts its final status.
func (n *Inverter) Tick(ctx context.Context) (node.Status, error) {
	status, err := n.Child().Tick(ctx)
	if err != nil {
		n.SetStatus(node.StatusFailure)
		return node.StatusFailure, err
	}
	switch status {
	case node.StatusSuccess:
		status = node.StatusFailure
	case node.StatusFailure:
		status = node.StatusSuccess
	}
	n.SetStatus(status)
	return status, nil
}
