package decorator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/btweave/internal/timerq"
	"github.com/vk/btweave/node"
	"github.com/vk/btweave/registry"
)

// leaf returns a fixed status and counts halts.
type leaf struct {
	node.Base
	result node.Status
	halts  int
}

func newLeaf(result node.Status) *leaf {
	return &leaf{Base: node.NewBase("leaf", node.KindAction, node.Config{}), result: result}
}

func (l *leaf) Tick(ctx context.Context) (node.Status, error) {
	l.SetStatus(l.result)
	return l.result, nil
}

func (l *leaf) Halt() {
	l.halts++
	l.Base.Halt()
}

func TestInverter(t *testing.T) {
	cases := []struct {
		child node.Status
		want  node.Status
	}{
		{node.StatusSuccess, node.StatusFailure},
		{node.StatusFailure, node.StatusSuccess},
		{node.StatusRunning, node.StatusRunning},
	}
	for _, tc := range cases {
		inv := NewInverter("inv", node.Config{})
		inv.SetChild(newLeaf(tc.child))
		status, err := inv.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.want, status, "child %s", tc.child)
	}
}

func timeoutConfig(msec string) node.Config {
	cfg := node.Config{}
	cfg.InputPorts.Set("msec", msec)
	return cfg
}

func TestTimeout(t *testing.T) {
	t.Run("child finishing in time passes through", func(t *testing.T) {
		timers := timerq.New()
		defer timers.Stop()

		to := NewTimeout("to", timeoutConfig("5000"), timers)
		to.SetChild(newLeaf(node.StatusSuccess))

		status, err := to.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, node.StatusSuccess, status)
	})

	t.Run("expiry halts the child and fails", func(t *testing.T) {
		timers := timerq.New()
		defer timers.Stop()

		child := newLeaf(node.StatusRunning)
		to := NewTimeout("to", timeoutConfig("20"), timers)
		to.SetChild(child)

		status, err := to.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, node.StatusRunning, status)

		time.Sleep(200 * time.Millisecond)

		status, err = to.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, node.StatusFailure, status)
		assert.Greater(t, child.halts, 0)
	})

	t.Run("unparsable deadline errors", func(t *testing.T) {
		timers := timerq.New()
		defer timers.Stop()

		to := NewTimeout("to", timeoutConfig("soon"), timers)
		to.SetChild(newLeaf(node.StatusSuccess))

		_, err := to.Tick(context.Background())
		assert.Error(t, err)
	})
}

func TestModuleRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	assert.True(t, r.HasBuilder("Inverter"))
	assert.True(t, r.HasBuilder("Timeout"))
	assert.True(t, r.IsBuiltin("Timeout"))

	m, ok := r.Manifest("Timeout")
	require.True(t, ok)
	spec, ok := m.Ports["msec"]
	require.True(t, ok)
	assert.Equal(t, node.PortInput, spec.Direction)
	assert.True(t, spec.Typed())
}
