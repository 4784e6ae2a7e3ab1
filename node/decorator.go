package node

// DecoratorBase is embedded by decorator nodes, which hold exactly one
// child.
type DecoratorBase struct {
	Base
	child TreeNode
}

// NewDecoratorBase initializes the embedded part of a decorator node.
func NewDecoratorBase(name string, config Config) DecoratorBase {
	return DecoratorBase{Base: NewBase(name, KindDecorator, config)}
}

// SetChild attaches the single child. Calling it twice is a programming
// error in the caller.
func (d *DecoratorBase) SetChild(child TreeNode) {
	if d.child != nil {
		panic("decorator node [" + d.Name() + "] already has a child")
	}
	d.child = child
}

// Child returns the attached child, or nil before linking.
func (d *DecoratorBase) Child() TreeNode {
	return d.child
}

// Halt stops the child and resets the node to idle.
func (d *DecoratorBase) Halt() {
	if d.child != nil {
		d.child.Halt()
	}
	d.Base.Halt()
}
