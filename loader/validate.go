package loader

import (
	"fmt"

	"github.com/vk/btweave/internal/xmldom"
)

// validateDocument applies the structural rules to one loaded document.
// Tree-root indexing across the whole document set has already happened,
// so forward references between documents resolve regardless of include
// order.
func (p *Parser) validateDocument(doc *xmldom.Element) error {
	if doc.Name != "root" {
		return &SchemaError{Line: doc.Line, Msg: "The XML must have a root node called <root>"}
	}

	models := doc.ChildrenNamed("TreeNodesModel")
	if len(models) > 1 {
		return &SchemaError{Line: models[1].Line, Msg: "Only a single node <TreeNodesModel> is supported"}
	}
	if len(models) == 1 {
		// Not having a model section is not an error, but graphical
		// editors rely on IDs when one is present.
		for _, child := range doc.Children {
			switch child.Name {
			case "Action", "Decorator", "SubTree", "Condition":
				if _, ok := child.Attr("ID"); !ok {
					return &SchemaError{Line: child.Line, Msg: "The attribute [ID] is mandatory"}
				}
			}
		}
	}

	for _, bt := range doc.ChildrenNamed("BehaviorTree") {
		if len(bt.Children) != 1 {
			return &SchemaError{Line: bt.Line, Msg: "The node <BehaviorTree> must have exactly 1 child"}
		}
		if err := p.validateTreeBody(bt.Children[0]); err != nil {
			return err
		}
	}
	return nil
}

// validateTreeBody recursively checks one element of a tree body.
func (p *Parser) validateTreeBody(el *xmldom.Element) error {
	switch el.Name {
	case "Decorator":
		if len(el.Children) != 1 {
			return &SchemaError{Line: el.Line, Msg: "The node <Decorator> must have exactly 1 child"}
		}
		if _, ok := el.Attr("ID"); !ok {
			return &SchemaError{Line: el.Line, Msg: "The node <Decorator> must have the attribute [ID]"}
		}
	case "Action", "Condition":
		if len(el.Children) != 0 {
			return &SchemaError{Line: el.Line, Msg: fmt.Sprintf("The node <%s> must not have any child", el.Name)}
		}
		if _, ok := el.Attr("ID"); !ok {
			return &SchemaError{Line: el.Line, Msg: fmt.Sprintf("The node <%s> must have the attribute [ID]", el.Name)}
		}
	case "Sequence", "SequenceStar", "Fallback", "FallbackStar":
		if len(el.Children) == 0 {
			return &SchemaError{Line: el.Line, Msg: "A Control node must have at least 1 child"}
		}
	case "SubTree":
		for _, child := range el.Children {
			if child.Name != "remap" {
				return &SchemaError{Line: el.Line, Msg: "<SubTree> accepts only children of type <remap>"}
			}
		}
		if _, ok := el.Attr("ID"); !ok {
			return &SchemaError{Line: el.Line, Msg: "The node <SubTree> must have the attribute [ID]"}
		}
	default:
		_, isManifest := p.factory.Manifest(el.Name)
		_, isTree := p.treeRoots[el.Name]
		if !isManifest && !isTree {
			return &UnknownNodeError{Name: el.Name, Line: el.Line}
		}
	}

	// Subtree children live in the referenced tree's body and are
	// validated when that body is walked.
	if el.Name == "SubTree" {
		return nil
	}
	for _, child := range el.Children {
		if err := p.validateTreeBody(child); err != nil {
			return err
		}
	}
	return nil
}
