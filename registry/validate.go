package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/btweave/internal/ctxlog"
	"github.com/vk/btweave/node"
)

// reservedPortNames are XML attribute names the loader claims for itself;
// no manifest may declare a port with one of these names.
var reservedPortNames = map[string]struct{}{
	"ID":   {},
	"name": {},
}

// Validate performs a strict parity check between HCL-declared node models
// and Go-registered manifests, and rejects manifests that declare reserved
// port names. When a model and a manifest share a registration ID, their
// kind, port sets, directions, and port types must agree.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, id := range sortedIDs(r.manifests) {
		manifest := r.manifests[id]
		for portName := range manifest.Ports {
			if _, reserved := reservedPortNames[portName]; reserved {
				errs = append(errs, fmt.Sprintf("node '%s': port name '%s' is reserved", id, portName))
			}
		}
	}

	for _, id := range sortedIDs(r.models) {
		model := r.models[id]
		for portName := range model.Ports {
			if _, reserved := reservedPortNames[portName]; reserved {
				errs = append(errs, fmt.Sprintf("node model '%s': port name '%s' is reserved", id, portName))
			}
		}

		manifest, hasBuilder := r.manifests[id]
		if !hasBuilder {
			logger.Debug("Node model has no Go builder; it is usable for validation only.", "id", id)
			continue
		}

		if model.Kind != manifest.Kind {
			errs = append(errs, fmt.Sprintf("node '%s': model declares kind %s, but the Go builder registered kind %s",
				id, model.Kind, manifest.Kind))
		}

		for portName, modelSpec := range model.Ports {
			goSpec, ok := manifest.Ports[portName]
			if !ok {
				errs = append(errs, fmt.Sprintf("node '%s': model declares port '%s' which the Go manifest does not have", id, portName))
				continue
			}
			if modelSpec.Direction != goSpec.Direction {
				errs = append(errs, fmt.Sprintf("node '%s', port '%s': model declares direction %s, Go manifest declares %s",
					id, portName, modelSpec.Direction, goSpec.Direction))
			}
			if modelSpec.Typed() && goSpec.Typed() && !modelSpec.Type.Equals(goSpec.Type) {
				errs = append(errs, fmt.Sprintf("node '%s', port '%s': type mismatch. Model requires '%s' but Go manifest provides '%s'",
					id, portName, modelSpec.Type.FriendlyName(), goSpec.Type.FriendlyName()))
			}
		}
		for portName := range manifest.Ports {
			if _, ok := model.Ports[portName]; !ok {
				errs = append(errs, fmt.Sprintf("node '%s': Go manifest has port '%s' which is not declared in the model", id, portName))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func sortedIDs(m map[string]*node.Manifest) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
