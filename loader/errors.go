// Package loader reads behavior tree definitions from XML, validates them
// against a factory registry, instantiates runnable trees, and writes live
// trees back to XML.
package loader

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// SyntaxError reports malformed XML from the underlying parser.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Error parsing the XML: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// SchemaError reports a structural rule violation in a loaded document.
// Line is the 1-based XML line of the offending element, or zero when the
// rule has no single location.
type SchemaError struct {
	Line int
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Error at line %d: -> %s", e.Line, e.Msg)
	}
	return e.Msg
}

// ConfigurationError reports that an include required a package resolver
// that is not available.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// UnknownNodeError reports an element that refers to a node kind that is
// neither registered in the factory nor the ID of a known tree.
type UnknownNodeError struct {
	Name string
	Line int
}

func (e *UnknownNodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Error at line %d: -> Node not recognized: %s", e.Line, e.Name)
	}
	return fmt.Sprintf("%s is not a registered node, nor a Subtree", e.Name)
}

// TypoError reports a remapping attribute that does not match any port of
// the node's manifest. Suggestion, when non-empty, is the closest declared
// port name.
type TypoError struct {
	Port           string
	RegistrationID string
	InstanceName   string
	Suggestion     string
}

func (e *TypoError) Error() string {
	msg := fmt.Sprintf("Possible typo. In the XML, you specified the port [%s] for node [%s / %s], "+
		"but the manifest of this node does not contain a port with this name.",
		e.Port, e.RegistrationID, e.InstanceName)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" Did you mean [%s]?", e.Suggestion)
	}
	return msg
}

// TypeMismatchError reports a blackboard key used with two incompatible
// port types.
type TypeMismatchError struct {
	Key  string
	Prev cty.Type
	Next cty.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("The creation of the tree failed because the port [%s] was initially created "+
		"with type [%s] and, later, type [%s] was used somewhere else.",
		e.Key, e.Prev.FriendlyName(), e.Next.FriendlyName())
}

// UsageError reports API misuse by the caller, such as a missing main-tree
// selection or a nil root blackboard.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }
