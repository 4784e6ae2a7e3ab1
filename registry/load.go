package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/btweave/internal/ctxlog"
	"github.com/vk/btweave/internal/fsutil"
	"github.com/vk/btweave/internal/hclutil"
	"github.com/vk/btweave/node"
)

// LoadNodeModels recursively loads every .hcl file under modelsPath and
// declares the node models found there. A model is a manifest without a
// builder: the loader's validator accepts such nodes, and external tooling
// can rely on their port signatures, but instantiating one still requires a
// Go builder registered under the same ID.
//
// Model file shape:
//
//	node "Action" "SaySomething" {
//	  description = "Prints a message."
//	  input "message" { type = string }
//	  output "done"   { type = bool }
//	}
func (r *Registry) LoadNodeModels(ctx context.Context, modelsPath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading node models from path...", "path", modelsPath)

	filePaths, err := fsutil.FindFilesByExtension(modelsPath, ".hcl")
	if err != nil {
		logger.Error("Failed to walk node models directory", "path", modelsPath, "error", err)
		return err
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl node model files found in path", "path", modelsPath)
		return nil
	}

	parser := hclparse.NewParser()
	loaded := 0
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}
		manifests, err := decodeNodeModels(hclFile)
		if err != nil {
			return fmt.Errorf("failed to process node models in %s: %w", filePath, err)
		}
		for _, m := range manifests {
			if _, exists := r.models[m.RegistrationID]; exists {
				return fmt.Errorf("node model '%s' in %s is already declared", m.RegistrationID, filePath)
			}
			r.models[m.RegistrationID] = m
		}
		loaded += len(manifests)
		logger.Debug("Loaded node models from HCL file", "file", filePath, "count", len(manifests))
	}

	logger.Info("Registry node models loaded successfully.", "models_loaded", loaded)
	return nil
}

// nodeModelRootSchema is the top-level structure of a model file: one or
// more 'node' blocks.
type nodeModelRootSchema struct {
	Nodes []*hclNodeModel `hcl:"node,block"`
}

// hclNodeModel is a single 'node' block, labelled with kind and ID.
type hclNodeModel struct {
	Kind string   `hcl:"kind,label"`
	ID   string   `hcl:"id,label"`
	Body hcl.Body `hcl:",remain"`
}

// nodeBodySchema describes the body of a 'node' block.
var nodeBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
		{Type: "inout", LabelNames: []string{"name"}},
	},
}

// portBodySchema describes the body of an 'input', 'output', or 'inout'
// block.
var portBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "description"},
	},
}

func decodeNodeModels(hclFile *hcl.File) ([]*node.Manifest, error) {
	schema := &nodeModelRootSchema{}
	if diags := gohcl.DecodeBody(hclFile.Body, nil, schema); diags.HasErrors() {
		return nil, diags
	}

	manifests := make([]*node.Manifest, 0, len(schema.Nodes))
	for _, parsed := range schema.Nodes {
		kind, err := kindFromLabel(parsed.Kind)
		if err != nil {
			return nil, err
		}
		bodyContent, diags := parsed.Body.Content(nodeBodySchema)
		if diags.HasErrors() {
			return nil, diags
		}
		manifest := &node.Manifest{
			RegistrationID: parsed.ID,
			Kind:           kind,
			Ports:          make(map[string]node.PortSpec),
		}
		for _, block := range bodyContent.Blocks {
			direction, err := directionFromBlockType(block.Type)
			if err != nil {
				return nil, err
			}
			portName := block.Labels[0]
			if _, exists := manifest.Ports[portName]; exists {
				return nil, fmt.Errorf("node '%s' declares port '%s' more than once", parsed.ID, portName)
			}
			spec := node.PortSpec{Direction: direction}
			portContent, diags := block.Body.Content(portBodySchema)
			if diags.HasErrors() {
				return nil, diags
			}
			if attr, ok := portContent.Attributes["type"]; ok {
				portType, typeDiags := hclutil.TypeFromExpr(attr.Expr)
				if typeDiags.HasErrors() {
					return nil, typeDiags
				}
				spec.Type = portType
			}
			manifest.Ports[portName] = spec
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

func kindFromLabel(label string) (node.Kind, error) {
	switch label {
	case "Action":
		return node.KindAction, nil
	case "Condition":
		return node.KindCondition, nil
	case "Control":
		return node.KindControl, nil
	case "Decorator":
		return node.KindDecorator, nil
	case "SubTree":
		return node.KindSubTree, nil
	}
	return 0, fmt.Errorf("unknown node kind label '%s'", label)
}

func directionFromBlockType(blockType string) (node.PortDirection, error) {
	switch blockType {
	case "input":
		return node.PortInput, nil
	case "output":
		return node.PortOutput, nil
	case "inout":
		return node.PortInOut, nil
	}
	return 0, fmt.Errorf("unknown port block type '%s'", blockType)
}
