package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/btweave/node"
)

// dummy is the smallest possible node for factory tests.
type dummy struct {
	node.Base
}

func (d *dummy) Tick(ctx context.Context) (node.Status, error) {
	d.SetStatus(node.StatusSuccess)
	return node.StatusSuccess, nil
}

func dummyBuilder(name string, config node.Config) (node.TreeNode, error) {
	return &dummy{Base: node.NewBase(name, node.KindAction, config)}, nil
}

func dummyManifest(id string) *node.Manifest {
	return &node.Manifest{RegistrationID: id, Kind: node.KindAction, Ports: map[string]node.PortSpec{}}
}

func TestRegisterBuilder(t *testing.T) {
	r := New()
	r.RegisterBuilder(dummyManifest("Ping"), dummyBuilder)

	assert.True(t, r.HasBuilder("Ping"))
	assert.Contains(t, r.Builders(), "Ping")
	assert.False(t, r.IsBuiltin("Ping"))

	m, ok := r.Manifest("Ping")
	require.True(t, ok)
	assert.Equal(t, "Ping", m.RegistrationID)

	t.Run("duplicate ID panics", func(t *testing.T) {
		assert.Panics(t, func() { r.RegisterBuilder(dummyManifest("Ping"), dummyBuilder) })
	})

	t.Run("empty ID panics", func(t *testing.T) {
		assert.Panics(t, func() { r.RegisterBuilder(dummyManifest(""), dummyBuilder) })
	})
}

func TestRegisterBuiltin(t *testing.T) {
	r := New()
	r.RegisterBuiltin(dummyManifest("AlwaysSuccess"), dummyBuilder)

	assert.True(t, r.IsBuiltin("AlwaysSuccess"))
	assert.Contains(t, r.BuiltinNodeIDs(), "AlwaysSuccess")
}

func TestInstantiate(t *testing.T) {
	r := New()
	r.RegisterBuilder(dummyManifest("Ping"), dummyBuilder)

	n, err := r.Instantiate("ping_1", "Ping", node.Config{})
	require.NoError(t, err)
	assert.Equal(t, "ping_1", n.Name())
	assert.Equal(t, "Ping", n.RegistrationID())

	_, err = r.Instantiate("x", "Unknown", node.Config{})
	assert.ErrorContains(t, err, "no builder registered with ID 'Unknown'")
}

func TestValidateReservedPortNames(t *testing.T) {
	r := New()
	r.RegisterBuilder(&node.Manifest{
		RegistrationID: "Bad",
		Kind:           node.KindAction,
		Ports: map[string]node.PortSpec{
			"ID": {Direction: node.PortInput, Type: cty.String},
		},
	}, dummyBuilder)

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port name 'ID' is reserved")
}
