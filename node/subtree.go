package node

import "context"

// SubTreeNode is the placeholder inserted where a tree references another
// tree by ID. Its single child is the root of the referenced tree, running
// in its own blackboard scope. Ticking a subtree just forwards to the
// child.
type SubTreeNode struct {
	DecoratorBase
}

// NewSubTree creates a subtree placeholder with the given instance name.
func NewSubTree(name string) *SubTreeNode {
	n := &SubTreeNode{DecoratorBase: NewDecoratorBase(name, Config{})}
	n.Base.kind = KindSubTree
	return n
}

// Kind returns KindSubTree.
func (n *SubTreeNode) Kind() Kind { return KindSubTree }

// Tick forwards to the child tree's root.
func (n *SubTreeNode) Tick(ctx context.Context) (Status, error) {
	child := n.Child()
	if child == nil {
		n.SetStatus(StatusFailure)
		return StatusFailure, nil
	}
	status, err := child.Tick(ctx)
	n.SetStatus(status)
	return status, err
}
