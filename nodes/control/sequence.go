package control

import (
	"context"

	"github.com/vk/btweave/node"
)

// Sequence ticks its children in order, restarting from the first child on
// every tick. It fails as soon as one child fails and succeeds once every
// child has succeeded.
type Sequence struct {
	node.ControlBase
}

// NewSequence creates a Sequence control node.
func NewSequence(name string, config node.Config) *Sequence {
	return &Sequence{ControlBase: node.NewControlBase(name, config)}
}

// Tick runs the children from the beginning until one is running or fails.
func (s *Sequence) Tick(ctx context.Context) (node.Status, error) {
	for _, child := range s.Children() {
		status, err := child.Tick(ctx)
		if err != nil {
			s.SetStatus(node.StatusFailure)
			return node.StatusFailure, err
		}
		switch status {
		case node.StatusRunning:
			s.SetStatus(node.StatusRunning)
			return node.StatusRunning, nil
		case node.StatusFailure:
			s.Halt()
			s.SetStatus(node.StatusFailure)
			return node.StatusFailure, nil
		}
	}
	s.Halt()
	s.SetStatus(node.StatusSuccess)
	return node.StatusSuccess, nil
}

// SequenceStar is a sequence with memory: successfully completed children
// are not ticked again until the whole sequence succeeds or is halted. After
// a child fails, the next tick resumes at that child.
type SequenceStar struct {
	node.ControlBase
	current int
}

// NewSequenceStar creates a SequenceStar control node.
func NewSequenceStar(name string, config node.Config) *SequenceStar {
	return &SequenceStar{ControlBase: node.NewControlBase(name, config)}
}

// Tick resumes from the child that was last running.
func (s *SequenceStar) Tick(ctx context.Context) (node.Status, error) {
	children := s.Children()
	for s.current < len(children) {
		status, err := children[s.current].Tick(ctx)
		if err != nil {
			s.SetStatus(node.StatusFailure)
			return node.StatusFailure, err
		}
		switch status {
		case node.StatusRunning:
			s.SetStatus(node.StatusRunning)
			return node.StatusRunning, nil
		case node.StatusFailure:
			s.SetStatus(node.StatusFailure)
			return node.StatusFailure, nil
		}
		s.current++
	}
	s.Halt()
	s.SetStatus(node.StatusSuccess)
	return node.StatusSuccess, nil
}

// Halt resets the memory index along with the children.
func (s *SequenceStar) Halt() {
	s.current = 0
	s.ControlBase.Halt()
}
