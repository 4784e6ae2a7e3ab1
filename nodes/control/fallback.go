package control

import (
	"context"

	"github.com/vk/btweave/node"
)

// Fallback ticks its children in order until one succeeds or is running,
// restarting from the first child on every tick. It fails only when every
// child has failed.
type Fallback struct {
	node.ControlBase
}

// NewFallback creates a Fallback control node.
func NewFallback(name string, config node.Config) *Fallback {
	return &Fallback{ControlBase: node.NewControlBase(name, config)}
}

// Tick runs the children from the beginning until one succeeds or is
// running.
func (f *Fallback) Tick(ctx context.Context) (node.Status, error) {
	for _, child := range f.Children() {
		status, err := child.Tick(ctx)
		if err != nil {
			f.SetStatus(node.StatusFailure)
			return node.StatusFailure, err
		}
		switch status {
		case node.StatusRunning:
			f.SetStatus(node.StatusRunning)
			return node.StatusRunning, nil
		case node.StatusSuccess:
			f.Halt()
			f.SetStatus(node.StatusSuccess)
			return node.StatusSuccess, nil
		}
	}
	f.Halt()
	f.SetStatus(node.StatusFailure)
	return node.StatusFailure, nil
}

// FallbackStar is a fallback with memory: failed children are not ticked
// again until the whole fallback finishes or is halted.
type FallbackStar struct {
	node.ControlBase
	current int
}

// NewFallbackStar creates a FallbackStar control node.
func NewFallbackStar(name string, config node.Config) *FallbackStar {
	return &FallbackStar{ControlBase: node.NewControlBase(name, config)}
}

// Tick resumes from the child that was last running.
func (f *FallbackStar) Tick(ctx context.Context) (node.Status, error) {
	children := f.Children()
	for f.current < len(children) {
		status, err := children[f.current].Tick(ctx)
		if err != nil {
			f.SetStatus(node.StatusFailure)
			return node.StatusFailure, err
		}
		switch status {
		case node.StatusRunning:
			f.SetStatus(node.StatusRunning)
			return node.StatusRunning, nil
		case node.StatusSuccess:
			f.Halt()
			f.SetStatus(node.StatusSuccess)
			return node.StatusSuccess, nil
		}
		f.current++
	}
	f.Halt()
	f.SetStatus(node.StatusFailure)
	return node.StatusFailure, nil
}

// Halt resets the memory index along with the children.
func (f *FallbackStar) Halt() {
	f.current = 0
	f.ControlBase.Halt()
}
