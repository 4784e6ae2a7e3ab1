package node

// ControlBase is embedded by control nodes. Children are ticked in the
// order they were attached, which is the order they were declared in.
type ControlBase struct {
	Base
	children []TreeNode
}

// NewControlBase initializes the embedded part of a control node.
func NewControlBase(name string, config Config) ControlBase {
	return ControlBase{Base: NewBase(name, KindControl, config)}
}

// AddChild appends a child, preserving declaration order.
func (c *ControlBase) AddChild(child TreeNode) {
	c.children = append(c.children, child)
}

// Children returns the attached children in declaration order.
func (c *ControlBase) Children() []TreeNode {
	return c.children
}

// Halt stops every child and resets the node to idle.
func (c *ControlBase) Halt() {
	for _, child := range c.children {
		child.Halt()
	}
	c.Base.Halt()
}

// HaltChildren halts the children in the half-open index range [from, to).
func (c *ControlBase) HaltChildren(from, to int) {
	for i := from; i < to && i < len(c.children); i++ {
		c.children[i].Halt()
	}
}
