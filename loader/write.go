package loader

import (
	"sort"
	"strings"

	"github.com/vk/btweave/internal/xmldom"
	"github.com/vk/btweave/node"
	"github.com/vk/btweave/registry"
)

// WriteXML reconstructs an XML definition from a live tree rooted at root,
// followed by a TreeNodesModel section listing every non-builtin,
// non-control manifest known to the factory. In compact mode, any node whose registration ID
// appears in the manifest registry is written with the ID as its element
// name instead of its kind tag.
func WriteXML(factory *registry.Registry, root node.TreeNode, compact bool) string {
	doc := &xmldom.Element{Name: "root"}

	if root != nil {
		bt := doc.AddChild("BehaviorTree")
		writeNode(factory, root, bt, compact)
	}
	writeNodeModels(factory, doc)

	return xmldom.Render(doc)
}

func writeNode(factory *registry.Registry, n node.TreeNode, parent *xmldom.Element, compact bool) {
	elementName := n.Kind().String()
	registrationID := n.RegistrationID()
	instanceName := n.Name()

	if n.Kind() == node.KindControl {
		elementName = registrationID
	} else if compact {
		if _, known := factory.Manifest(registrationID); known {
			elementName = registrationID
		}
	}

	el := parent.AddChild(elementName)
	if elementName != registrationID && registrationID != "" {
		el.SetAttr("ID", registrationID)
	}
	if elementName != instanceName && instanceName != "" && instanceName != registrationID {
		el.SetAttr("name", instanceName)
	}

	config := n.Config()
	written := make(map[string]struct{})
	for _, portName := range config.InputPorts.Names() {
		value, _ := config.InputPorts.Get(portName)
		el.SetAttr(portName, value)
		written[portName] = struct{}{}
	}
	for _, portName := range config.OutputPorts.Names() {
		// InOut ports already appeared among the inputs.
		if _, dup := written[portName]; dup {
			continue
		}
		value, _ := config.OutputPorts.Get(portName)
		el.SetAttr(portName, value)
	}

	switch typed := n.(type) {
	case interface{ Children() []node.TreeNode }:
		for _, child := range typed.Children() {
			writeNode(factory, child, el, compact)
		}
	case interface{ Child() node.TreeNode }:
		if child := typed.Child(); child != nil {
			writeNode(factory, child, el, compact)
		}
	}
}

// writeNodeModels emits the TreeNodesModel section: one element per
// non-builtin, non-control manifest, with port names grouped by direction
// into semicolon-separated attribute lists.
func writeNodeModels(factory *registry.Registry, doc *xmldom.Element) {
	modelRoot := doc.AddChild("TreeNodesModel")

	manifests := factory.Manifests()
	ids := make([]string, 0, len(manifests))
	for id := range manifests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		manifest := manifests[id]
		if factory.IsBuiltin(id) || manifest.Kind == node.KindControl {
			continue
		}

		el := modelRoot.AddChild(manifest.Kind.String())
		el.SetAttr("ID", manifest.RegistrationID)

		var inputs, outputs, inouts []string
		for _, portName := range sortedPortNames(manifest.Ports) {
			switch manifest.Ports[portName].Direction {
			case node.PortInput:
				inputs = append(inputs, portName)
			case node.PortOutput:
				outputs = append(outputs, portName)
			case node.PortInOut:
				inouts = append(inouts, portName)
			}
		}
		if len(inputs) > 0 {
			el.SetAttr("input_ports", strings.Join(inputs, ";"))
		}
		if len(outputs) > 0 {
			el.SetAttr("output_ports", strings.Join(outputs, ";"))
		}
		if len(inouts) > 0 {
			el.SetAttr("inout_ports", strings.Join(inouts, ";"))
		}
	}
}

func sortedPortNames(ports map[string]node.PortSpec) []string {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
