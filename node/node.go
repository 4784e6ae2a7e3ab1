// Package node defines the building blocks of a behavior tree: the TreeNode
// contract, node kinds, port specifications, manifests, and the base types
// concrete nodes embed. It carries no XML knowledge; the loader package
// materializes trees out of these parts.
package node

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Status is the result of ticking a node.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
)

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailure:
		return "FAILURE"
	}
	return "UNKNOWN"
}

// Kind classifies a node for linking and serialization purposes.
type Kind int

const (
	KindAction Kind = iota
	KindCondition
	KindControl
	KindDecorator
	KindSubTree
)

// String returns the XML tag associated with the kind.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "Action"
	case KindCondition:
		return "Condition"
	case KindControl:
		return "Control"
	case KindDecorator:
		return "Decorator"
	case KindSubTree:
		return "SubTree"
	}
	return "Unknown"
}

// PortDirection states how a node uses a port.
type PortDirection int

const (
	PortInput PortDirection = iota
	PortOutput
	PortInOut
)

// String returns the lower-case name of the direction.
func (d PortDirection) String() string {
	switch d {
	case PortInput:
		return "input"
	case PortOutput:
		return "output"
	case PortInOut:
		return "inout"
	}
	return "unknown"
}

// PortSpec is the declared signature of a single port. Type may be
// cty.NilType when the port is untyped; typed ports participate in
// blackboard type reconciliation.
type PortSpec struct {
	Direction PortDirection
	Type      cty.Type
}

// Typed reports whether the port declares a value type.
func (p PortSpec) Typed() bool {
	return p.Type != cty.NilType
}

// Manifest is the declared signature of a node kind: how it registers, how
// it links, and which ports it exposes. Port names are unique within a
// manifest by construction of the map.
type Manifest struct {
	RegistrationID string
	Kind           Kind
	Ports          map[string]PortSpec
}

// TreeNode is the contract every node in a materialized tree satisfies.
type TreeNode interface {
	// Name is the per-instance name chosen in the tree definition.
	Name() string

	// RegistrationID is the factory ID the node was built from.
	RegistrationID() string

	// Kind classifies the node for linking and serialization.
	Kind() Kind

	// Config exposes the blackboard and port remappings the node was
	// constructed with.
	Config() *Config

	// Status returns the status of the most recent tick.
	Status() Status

	// Tick performs one unit of work and returns the resulting status.
	Tick(ctx context.Context) (Status, error)

	// Halt stops any in-flight work and resets the node to idle.
	Halt()
}

// ChildAdder is satisfied by nodes that accept any number of children in
// declaration order.
type ChildAdder interface {
	AddChild(child TreeNode)
}

// ChildSetter is satisfied by nodes that hold exactly one child.
type ChildSetter interface {
	SetChild(child TreeNode)
}
