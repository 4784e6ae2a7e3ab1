package decorator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/btweave/internal/timerq"
	"github.com/vk/btweave/node"
)

// Timeout fails its child if it is still running when the deadline set by
// the "msec" port expires. The deadline is armed on the first tick after
// the node was idle and disarmed when the child finishes or the node is
// halted.
type Timeout struct {
	node.DecoratorBase
	timers *timerq.Queue

	childHalted atomic.Bool
	timerID     uint64
	armed       bool
}

// NewTimeout creates a Timeout decorator node scheduling on timers.
func NewTimeout(name string, config node.Config, timers *timerq.Queue) *Timeout {
	return &Timeout{
		DecoratorBase: node.NewDecoratorBase(name, config),
		timers:        timers,
	}
}

// Tick arms the deadline if needed, then forwards to the child.
func (n *Timeout) Tick(ctx context.Context) (node.Status, error) {
	if n.childHalted.Load() {
		n.disarm()
		n.SetStatus(node.StatusFailure)
		return node.StatusFailure, nil
	}

	if !n.armed {
		msec, err := n.deadlineMillis()
		if err != nil {
			n.SetStatus(node.StatusFailure)
			return node.StatusFailure, err
		}
		child := n.Child()
		n.timerID = n.timers.Add(time.Duration(msec)*time.Millisecond, func() {
			if n.childHalted.CompareAndSwap(false, true) {
				child.Halt()
			}
		})
		n.armed = true
	}

	status, err := n.Child().Tick(ctx)
	if err != nil {
		n.disarm()
		n.SetStatus(node.StatusFailure)
		return node.StatusFailure, err
	}
	if status != node.StatusRunning {
		n.disarm()
	}
	n.SetStatus(status)
	return status, nil
}

// Halt disarms the deadline and halts the child.
func (n *Timeout) Halt() {
	n.disarm()
	n.DecoratorBase.Halt()
}

func (n *Timeout) disarm() {
	if n.armed {
		n.timers.Cancel(n.timerID)
		n.armed = false
	}
	n.childHalted.Store(false)
}

func (n *Timeout) deadlineMillis() (int64, error) {
	v, err := n.Config().InputValue("msec", cty.Number)
	if err != nil {
		return 0, err
	}
	var msec int64
	if err := gocty.FromCtyValue(v, &msec); err != nil {
		return 0, err
	}
	return msec, nil
}
