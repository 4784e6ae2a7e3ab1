package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/btweave/node"
	"github.com/vk/btweave/nodes/action"
	"github.com/vk/btweave/nodes/control"
	"github.com/vk/btweave/nodes/decorator"
	"github.com/vk/btweave/registry"
)

// newTestFactory builds a registry with the builtin modules plus a handful
// of test nodes used across the loader tests.
func newTestFactory(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	(&control.Module{}).Register(r)
	(&decorator.Module{}).Register(r)
	(&action.Module{}).Register(r)

	leafBuilder := func(result node.Status) registry.Builder {
		return func(name string, config node.Config) (node.TreeNode, error) {
			return newTestLeaf(name, config, result), nil
		}
	}

	r.RegisterBuilder(&node.Manifest{
		RegistrationID: "Ping", Kind: node.KindAction, Ports: map[string]node.PortSpec{},
	}, leafBuilder(node.StatusSuccess))
	r.RegisterBuilder(&node.Manifest{
		RegistrationID: "SaySomething", Kind: node.KindAction,
		Ports: map[string]node.PortSpec{
			"message": {Direction: node.PortInput, Type: cty.String},
		},
	}, leafBuilder(node.StatusSuccess))
	r.RegisterBuilder(&node.Manifest{
		RegistrationID: "PortA", Kind: node.KindAction,
		Ports: map[string]node.PortSpec{
			"x": {Direction: node.PortInput, Type: cty.Number},
		},
	}, leafBuilder(node.StatusSuccess))
	r.RegisterBuilder(&node.Manifest{
		RegistrationID: "PortB", Kind: node.KindAction,
		Ports: map[string]node.PortSpec{
			"y": {Direction: node.PortInput, Type: cty.String},
		},
	}, leafBuilder(node.StatusSuccess))
	r.RegisterBuilder(&node.Manifest{
		RegistrationID: "Tally", Kind: node.KindAction,
		Ports: map[string]node.PortSpec{
			"count": {Direction: node.PortInOut, Type: cty.Number},
		},
	}, leafBuilder(node.StatusSuccess))
	return r
}

// testLeaf succeeds or fails unconditionally and records its last resolved
// "message" input, if any.
type testLeaf struct {
	node.Base
	result      node.Status
	lastMessage string
}

func newTestLeaf(name string, config node.Config, result node.Status) *testLeaf {
	return &testLeaf{Base: node.NewBase(name, node.KindAction, config), result: result}
}

func (l *testLeaf) Tick(ctx context.Context) (node.Status, error) {
	if _, ok := l.Config().Input("message"); ok {
		v, err := l.Config().InputValue("message", cty.String)
		if err != nil {
			l.SetStatus(node.StatusFailure)
			return node.StatusFailure, err
		}
		l.lastMessage = v.AsString()
	}
	l.SetStatus(l.result)
	return l.result, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFromText(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes trees with explicit IDs", func(t *testing.T) {
		p := New(newTestFactory(t))
		err := p.LoadFromText(ctx, `<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main"><Sequence><Action ID="Ping"/></Sequence></BehaviorTree>
  <BehaviorTree ID="Other"><Action ID="Ping"/></BehaviorTree>
</root>`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Main", "Other"}, p.treeOrder)
	})

	t.Run("auto-generates IDs per parser instance", func(t *testing.T) {
		p := New(newTestFactory(t))
		err := p.LoadFromText(ctx, `<root><BehaviorTree><Sequence><Action ID="Ping"/></Sequence></BehaviorTree></root>`)
		require.NoError(t, err)
		require.Len(t, p.treeOrder, 1)
		assert.Equal(t, "BehaviorTree_0", p.treeOrder[0])
	})

	t.Run("malformed XML is a syntax error", func(t *testing.T) {
		p := New(newTestFactory(t))
		err := p.LoadFromText(ctx, `<root><BehaviorTree>`)
		var syntaxErr *SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
	})

	t.Run("duplicate tree IDs are rejected", func(t *testing.T) {
		p := New(newTestFactory(t))
		err := p.LoadFromText(ctx, `<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main"><Action ID="Ping"/></BehaviorTree>
  <BehaviorTree ID="Main"><Action ID="Ping"/></BehaviorTree>
</root>`)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Msg, "already registered")
	})

	t.Run("missing selection with two trees is a usage error", func(t *testing.T) {
		p := New(newTestFactory(t))
		err := p.LoadFromText(ctx, `<root>
  <BehaviorTree ID="A"><Action ID="Ping"/></BehaviorTree>
  <BehaviorTree ID="B"><Action ID="Ping"/></BehaviorTree>
</root>`)
		var usageErr *UsageError
		assert.ErrorAs(t, err, &usageErr)
	})

	t.Run("dangling selection is a usage error", func(t *testing.T) {
		p := New(newTestFactory(t))
		err := p.LoadFromText(ctx, `<root main_tree_to_execute="Nope">
  <BehaviorTree ID="A"><Action ID="Ping"/></BehaviorTree>
</root>`)
		var usageErr *UsageError
		require.ErrorAs(t, err, &usageErr)
		assert.Contains(t, usageErr.Msg, "main_tree_to_execute")
	})
}

func TestLoadFromFileIncludes(t *testing.T) {
	ctx := context.Background()

	t.Run("relative includes resolve against the including file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "main.xml"), `<root main_tree_to_execute="Main">
  <include path="sub/child.xml"/>
  <BehaviorTree ID="Main"><Sub/></BehaviorTree>
</root>`)
		writeFile(t, filepath.Join(dir, "sub", "child.xml"), `<root>
  <BehaviorTree ID="Sub"><Action ID="Ping"/></BehaviorTree>
</root>`)

		p := New(newTestFactory(t))
		require.NoError(t, p.LoadFromFile(ctx, filepath.Join(dir, "main.xml")))
		assert.Equal(t, []string{"Main", "Sub"}, p.treeOrder)
		assert.Len(t, p.docs, 2)
	})

	t.Run("includes chain depth-first", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "main.xml"), `<root main_tree_to_execute="Main">
  <include path="mid/mid.xml"/>
  <BehaviorTree ID="Main"><Mid/></BehaviorTree>
</root>`)
		writeFile(t, filepath.Join(dir, "mid", "mid.xml"), `<root>
  <include path="leaf.xml"/>
  <BehaviorTree ID="Mid"><Leaf/></BehaviorTree>
</root>`)
		writeFile(t, filepath.Join(dir, "mid", "leaf.xml"), `<root>
  <BehaviorTree ID="Leaf"><Action ID="Ping"/></BehaviorTree>
</root>`)

		p := New(newTestFactory(t))
		require.NoError(t, p.LoadFromFile(ctx, filepath.Join(dir, "main.xml")))
		assert.Equal(t, []string{"Main", "Mid", "Leaf"}, p.treeOrder)
	})

	t.Run("missing include file aborts the load", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "main.xml"), `<root>
  <include path="gone.xml"/>
  <BehaviorTree ID="Main"><Action ID="Ping"/></BehaviorTree>
</root>`)

		p := New(newTestFactory(t))
		assert.Error(t, p.LoadFromFile(ctx, filepath.Join(dir, "main.xml")))
	})
}

// mapResolver resolves package names from a fixed table.
type mapResolver map[string]string

func (m mapResolver) ResolvePackage(name string) (string, error) {
	root, ok := m[name]
	if !ok {
		return "", fmt.Errorf("unknown package %q", name)
	}
	return root, nil
}

func TestPackageIncludes(t *testing.T) {
	ctx := context.Background()

	mainFor := func(dir, include string) string {
		path := filepath.Join(dir, "main.xml")
		writeFile(t, path, `<root main_tree_to_execute="Main">
  `+include+`
  <BehaviorTree ID="Main"><Pkg/></BehaviorTree>
</root>`)
		return path
	}
	pkgTree := `<root><BehaviorTree ID="Pkg"><Action ID="Ping"/></BehaviorTree></root>`

	t.Run("package-relative include resolves through the resolver", func(t *testing.T) {
		dir := t.TempDir()
		pkgRoot := filepath.Join(dir, "pkg_root")
		writeFile(t, filepath.Join(pkgRoot, "trees", "pkg.xml"), pkgTree)
		main := mainFor(dir, `<include path="trees/pkg.xml" ros_pkg="my_pkg"/>`)

		p := New(newTestFactory(t), WithPackageResolver(mapResolver{"my_pkg": pkgRoot}))
		require.NoError(t, p.LoadFromFile(ctx, main))
		assert.Contains(t, p.treeOrder, "Pkg")
	})

	t.Run("package attribute without a resolver is a configuration error", func(t *testing.T) {
		dir := t.TempDir()
		main := mainFor(dir, `<include path="trees/pkg.xml" ros_pkg="my_pkg"/>`)

		p := New(newTestFactory(t))
		err := p.LoadFromFile(ctx, main)
		var confErr *ConfigurationError
		assert.ErrorAs(t, err, &confErr)
	})

	t.Run("absolute path wins over the package attribute", func(t *testing.T) {
		dir := t.TempDir()
		abs := filepath.Join(dir, "elsewhere", "pkg.xml")
		writeFile(t, abs, pkgTree)
		main := mainFor(dir, `<include path="`+abs+`" ros_pkg="my_pkg"/>`)

		p := New(newTestFactory(t), WithPackageResolver(mapResolver{"my_pkg": filepath.Join(dir, "unused")}))
		require.NoError(t, p.LoadFromFile(ctx, main))
		assert.Contains(t, p.treeOrder, "Pkg")
	})

	t.Run("failing resolver is a configuration error", func(t *testing.T) {
		dir := t.TempDir()
		main := mainFor(dir, `<include path="trees/pkg.xml" ros_pkg="other_pkg"/>`)

		p := New(newTestFactory(t), WithPackageResolver(mapResolver{"my_pkg": dir}))
		err := p.LoadFromFile(ctx, main)
		var confErr *ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.Contains(t, confErr.Msg, "other_pkg")
	})
}

func TestBuildTreeHelpers(t *testing.T) {
	ctx := context.Background()
	text := `<root><BehaviorTree><Sequence><Action ID="Ping"/></Sequence></BehaviorTree></root>`

	t.Run("from text", func(t *testing.T) {
		tree, err := BuildTreeFromText(ctx, newTestFactory(t), text, newBB())
		require.NoError(t, err)
		assert.Len(t, tree.Nodes, 2)
	})

	t.Run("from file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tree.xml")
		writeFile(t, path, text)

		tree, err := BuildTreeFromFile(ctx, newTestFactory(t), path, newBB())
		require.NoError(t, err)
		assert.Len(t, tree.Nodes, 2)
	})
}
