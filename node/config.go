package node

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/btweave/blackboard"
)

// Config carries everything a node needs at construction time: the
// blackboard scope it runs in and the port remappings collected from its
// definition. InOut ports appear in both maps.
type Config struct {
	Blackboard  *blackboard.Blackboard
	InputPorts  PortsRemapping
	OutputPorts PortsRemapping
}

// ParseRemappedKey reports whether a remapping value is a blackboard
// reference of the form "{key}", and if so returns the key.
func ParseRemappedKey(value string) (string, bool) {
	if len(value) >= 3 && strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		return value[1 : len(value)-1], true
	}
	return "", false
}

// Input returns the raw remapping value of an input port.
func (c *Config) Input(name string) (string, bool) {
	return c.InputPorts.Get(name)
}

// InputValue resolves an input port to a value of the wanted type. A
// "{key}" remapping reads the blackboard; anything else is treated as a
// string literal and converted.
func (c *Config) InputValue(name string, want cty.Type) (cty.Value, error) {
	raw, ok := c.InputPorts.Get(name)
	if !ok {
		return cty.NilVal, fmt.Errorf("input port [%s] was not provided", name)
	}
	if key, isRef := ParseRemappedKey(raw); isRef {
		if c.Blackboard == nil {
			return cty.NilVal, fmt.Errorf("input port [%s] references {%s} but the node has no blackboard", name, key)
		}
		v, found := c.Blackboard.Get(key)
		if !found {
			return cty.NilVal, fmt.Errorf("blackboard has no entry for key [%s] referenced by port [%s]", key, name)
		}
		converted, err := convert.Convert(v, want)
		if err != nil {
			return cty.NilVal, fmt.Errorf("port [%s]: %w", name, err)
		}
		return converted, nil
	}
	converted, err := convert.Convert(cty.StringVal(raw), want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("port [%s]: cannot convert literal %q: %w", name, raw, err)
	}
	return converted, nil
}

// SetOutput writes a value through an output port. The port's remapping
// must be a "{key}" blackboard reference.
func (c *Config) SetOutput(name string, value cty.Value) error {
	raw, ok := c.OutputPorts.Get(name)
	if !ok {
		return fmt.Errorf("output port [%s] was not provided", name)
	}
	key, isRef := ParseRemappedKey(raw)
	if !isRef {
		return fmt.Errorf("output port [%s] must remap to a blackboard key, got literal %q", name, raw)
	}
	if c.Blackboard == nil {
		return fmt.Errorf("output port [%s] references {%s} but the node has no blackboard", name, key)
	}
	c.Blackboard.Set(key, value)
	return nil
}
