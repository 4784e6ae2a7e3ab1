package node

// Base carries the state shared by every node implementation: identity,
// configuration and last status. Concrete nodes embed it and implement
// Tick themselves.
type Base struct {
	name           string
	registrationID string
	kind           Kind
	config         Config
	status         Status
}

// NewBase initializes the embedded part of a node.
func NewBase(name string, kind Kind, config Config) Base {
	return Base{name: name, kind: kind, config: config}
}

// Name returns the instance name.
func (b *Base) Name() string { return b.name }

// RegistrationID returns the factory ID the node was built from. It is
// empty until SetRegistrationID is called by the factory.
func (b *Base) RegistrationID() string { return b.registrationID }

// SetRegistrationID records the factory ID. The factory calls this once,
// right after the builder returns.
func (b *Base) SetRegistrationID(id string) { b.registrationID = id }

// Kind classifies the node.
func (b *Base) Kind() Kind { return b.kind }

// Config exposes the node's construction-time configuration.
func (b *Base) Config() *Config { return &b.config }

// Status returns the status of the most recent tick.
func (b *Base) Status() Status { return b.status }

// SetStatus records the status of a tick.
func (b *Base) SetStatus(s Status) { b.status = s }

// Halt resets the node to idle. Nodes with in-flight work override this.
func (b *Base) Halt() { b.status = StatusIdle }
