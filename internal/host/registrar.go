package host

import "context"

// Kind separates model-callable tools from UI actions.
type Kind string

const (
	KindTool   Kind = "tool"
	KindAction Kind = "action"
)

// ParamType is the JSON type of a parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Param declares one parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Nullable parameters accept an explicit null distinct from omission.
	Nullable bool
	Enum     []string
	// Rules holds extra validator tags applied to non-null values,
	// e.g. "min=0".
	Rules string
}

// Result is the uniform response envelope.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler executes a tool with raw arguments. The caller's user id travels
// in ctx (see WithUserID).
type Handler func(ctx context.Context, args map[string]any) Result

// Descriptor describes a tool or UI action.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Params      []Param
	Handler     Handler
}

// Registration is returned by Register. Dispose removes the registration.
type Registration interface {
	Dispose() error
}

// Registrar registers tools for the lifetime of an activation.
type Registrar interface {
	Register(d Descriptor) (Registration, error)
}

// ActionRegistrar is implemented by registrars that also surface UI
// actions.
type ActionRegistrar interface {
	Registrar
	RegisterAction(d Descriptor) (Registration, error)
}
