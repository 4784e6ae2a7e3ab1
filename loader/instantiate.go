package loader

import (
	"context"

	"github.com/agext/levenshtein"

	"github.com/vk/btweave/blackboard"
	"github.com/vk/btweave/internal/ctxlog"
	"github.com/vk/btweave/internal/xmldom"
	"github.com/vk/btweave/node"
)

// Tree is a materialized behavior tree. It owns every node: Nodes is a
// pre-order sequence whose first element is the root, and Blackboards
// holds one scope per subtree expansion, the caller-supplied root scope
// first. Call Halt when discarding a tree to stop any live actions.
type Tree struct {
	Root        node.TreeNode
	Nodes       []node.TreeNode
	Blackboards []*blackboard.Blackboard
}

// RootBlackboard returns the root scope, or nil for an empty tree.
func (t *Tree) RootBlackboard() *blackboard.Blackboard {
	if len(t.Blackboards) > 0 {
		return t.Blackboards[0]
	}
	return nil
}

// Tick ticks the root node once.
func (t *Tree) Tick(ctx context.Context) (node.Status, error) {
	return t.Root.Tick(ctx)
}

// Halt stops every node in the tree. The root is halted first, which
// cascades through the graph; the flat sweep afterwards catches nodes a
// custom parent failed to forward to.
func (t *Tree) Halt() {
	if t.Root != nil {
		t.Root.Halt()
	}
	for _, n := range t.Nodes {
		n.Halt()
	}
}

// Instantiate materializes the main tree into a runnable Tree rooted in
// the supplied blackboard. The Parser keeps no reference to the result;
// trees outlive their parser.
func (p *Parser) Instantiate(ctx context.Context, rootBlackboard *blackboard.Blackboard) (*Tree, error) {
	if rootBlackboard == nil {
		return nil, &UsageError{Msg: "Instantiate needs a non-empty root blackboard"}
	}
	mainID, err := p.mainTreeID()
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Instantiating behavior tree.", "main_tree", mainID, "known_trees", p.treeNames())

	tree := &Tree{Blackboards: []*blackboard.Blackboard{rootBlackboard}}
	if err := p.expandTree(ctx, mainID, tree, rootBlackboard, nil); err != nil {
		return nil, err
	}
	if len(tree.Nodes) > 0 {
		tree.Root = tree.Nodes[0]
	}
	return tree, nil
}

// expandTree walks the body of the tree registered under treeID, creating
// nodes in pre-order and linking them under parent (nil for the main
// tree's root).
func (p *Parser) expandTree(ctx context.Context, treeID string, tree *Tree, bb *blackboard.Blackboard, parent node.TreeNode) error {
	treeRoot, ok := p.treeRoots[treeID]
	if !ok {
		return &UnknownNodeError{Name: treeID}
	}
	if len(treeRoot.Children) != 1 {
		return &SchemaError{Line: treeRoot.Line, Msg: "The node <BehaviorTree> must have exactly 1 child"}
	}
	return p.walkElement(ctx, treeRoot.Children[0], tree, bb, parent)
}

// walkElement creates the node for one XML element, links it to its
// parent, and descends.
func (p *Parser) walkElement(ctx context.Context, el *xmldom.Element, tree *Tree, bb *blackboard.Blackboard, parent node.TreeNode) error {
	n, refTreeID, err := p.createNode(el, bb)
	if err != nil {
		return err
	}
	if parent != nil {
		switch link := parent.(type) {
		case node.ChildAdder:
			link.AddChild(n)
		case node.ChildSetter:
			link.SetChild(n)
		}
	}
	tree.Nodes = append(tree.Nodes, n)

	if n.Kind() == node.KindSubTree {
		parentBB := tree.Blackboards[len(tree.Blackboards)-1]
		childBB := blackboard.NewChild(parentBB)
		for _, remap := range el.ChildrenNamed("remap") {
			internal, _ := remap.Attr("internal")
			external, _ := remap.Attr("external")
			childBB.AddSubtreeRemapping(internal, external)
		}
		tree.Blackboards = append(tree.Blackboards, childBB)
		return p.expandTree(ctx, refTreeID, tree, childBB, n)
	}

	for _, child := range el.Children {
		if err := p.walkElement(ctx, child, tree, bb, n); err != nil {
			return err
		}
	}
	return nil
}

// createNode materializes one XML element. For subtree references it
// additionally returns the ID of the referenced tree.
func (p *Parser) createNode(el *xmldom.Element, bb *blackboard.Blackboard) (node.TreeNode, string, error) {
	elementName := el.Name

	// Actions, Conditions, and Decorators carry their registration ID as
	// an attribute; every other element is named after its ID.
	registrationID := elementName
	switch elementName {
	case "Action", "Decorator", "Condition":
		registrationID, _ = el.Attr("ID")
	}

	instanceName := registrationID
	if alias, ok := el.Attr("name"); ok {
		instanceName = alias
	}

	// Every attribute other than ID and name is a port remapping.
	var remapping node.PortsRemapping
	for _, attr := range el.Attrs {
		if attr.Name != "ID" && attr.Name != "name" {
			remapping.Set(attr.Name, attr.Value)
		}
	}

	if p.factory.HasBuilder(registrationID) {
		n, err := p.buildRegisteredNode(registrationID, instanceName, remapping, bb)
		return n, "", err
	}

	if elementName == "SubTree" {
		refTreeID, _ := el.Attr("ID")
		return newSubtreePlaceholder(refTreeID, refTreeID), refTreeID, nil
	}
	if _, isTree := p.treeRoots[registrationID]; isTree {
		return newSubtreePlaceholder(instanceName, registrationID), registrationID, nil
	}
	return nil, "", &UnknownNodeError{Name: registrationID}
}

func newSubtreePlaceholder(instanceName, refTreeID string) *node.SubTreeNode {
	n := node.NewSubTree(instanceName)
	n.SetRegistrationID(refTreeID)
	return n
}

// buildRegisteredNode reconciles the remapping against the manifest,
// registers port types on the blackboard, and invokes the factory.
func (p *Parser) buildRegisteredNode(registrationID, instanceName string, remapping node.PortsRemapping, bb *blackboard.Blackboard) (node.TreeNode, error) {
	manifest, _ := p.factory.Manifest(registrationID)

	// Every remapped name must be a declared port.
	for _, portName := range remapping.Names() {
		if _, declared := manifest.Ports[portName]; !declared {
			return nil, &TypoError{
				Port:           portName,
				RegistrationID: registrationID,
				InstanceName:   instanceName,
				Suggestion:     suggestPort(portName, manifest.Ports),
			}
		}
	}

	// Register port types on the blackboard so conflicting uses of a key
	// are caught while the tree is being built.
	for _, portName := range remapping.Names() {
		spec := manifest.Ports[portName]
		if !spec.Typed() {
			continue
		}
		value, _ := remapping.Get(portName)
		key, isRef := node.ParseRemappedKey(value)
		if !isRef {
			continue
		}
		if prev, declared := bb.PortType(key); declared {
			if !prev.Equals(spec.Type) {
				return nil, &TypeMismatchError{Key: key, Prev: prev, Next: spec.Type}
			}
		} else {
			bb.SetPortType(key, spec.Type)
		}
	}

	config := node.Config{Blackboard: bb}
	for _, portName := range remapping.Names() {
		spec := manifest.Ports[portName]
		value, _ := remapping.Get(portName)
		if spec.Direction != node.PortOutput {
			config.InputPorts.Set(portName, value)
		}
		if spec.Direction != node.PortInput {
			config.OutputPorts.Set(portName, value)
		}
	}

	return p.factory.Instantiate(instanceName, registrationID, config)
}

// suggestPort returns the declared port name closest to the misspelled
// one, or "" when nothing is close enough.
func suggestPort(given string, ports map[string]node.PortSpec) string {
	best := ""
	bestDist := 3
	for name := range ports {
		if dist := levenshtein.Distance(given, name, nil); dist < bestDist {
			best, bestDist = name, dist
		}
	}
	return best
}
