package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Call carries the resolved inputs for one producing-function invocation.
// Args are the parameter values in declared order; Seed is the derived seed
// for any sampling the function performs.
type Call struct {
	Args []any
	Seed int64
}

// ComputeFunc is the contract for a producing function: given resolved
// parameter values, return one value per declared output name, in order.
// A returned error is fatal for the whole request.
type ComputeFunc func(ctx context.Context, call Call) ([]any, error)

// Module is the interface each computation package implements to register
// its producing functions.
type Module interface {
	Register(r *Registry)
}

// ParamRef is one entry in a declared parameter list: either a reference to
// another resource by name, or a literal constant.
type ParamRef struct {
	ref     string
	literal cty.Value
}

// Ref returns a ParamRef referencing the named resource.
func Ref(name string) ParamRef { return ParamRef{ref: name} }

// Literal returns a ParamRef holding a constant value.
func Literal(v cty.Value) ParamRef { return ParamRef{literal: v} }

// IsLiteral reports whether the reference is a literal constant.
func (p ParamRef) IsLiteral() bool { return p.ref == "" }

// Name returns the referenced resource name. It is empty for literals.
func (p ParamRef) Name() string { return p.ref }

// Value converts a literal constant to its Go representation.
func (p ParamRef) Value() (any, error) {
	switch {
	case p.literal.Type() == cty.Number:
		f, _ := p.literal.AsBigFloat().Float64()
		return f, nil
	case p.literal.Type() == cty.Bool:
		return p.literal.True(), nil
	default:
		return nil, fmt.Errorf("unsupported literal type %s", p.literal.Type().FriendlyName())
	}
}

// Function is the declared descriptor of a producing function: its default
// parameter list, its named outputs, and its seed offset.
type Function struct {
	ID         string
	Params     []ParamRef
	Returns    []string
	SeedOffset int64
}

// Resource is one named node of the dependency graph. Params, Returns and
// SeedOffset, when set, specialize the underlying function's declaration.
type Resource struct {
	Name        string
	Function    string
	Params      []ParamRef
	Returns     []string
	SeedOffset  *int64
	Metafeature bool
}

// Registry holds the registered Go handlers and the declared resource
// catalog. It is populated once at load time and read-only afterwards.
type Registry struct {
	handlers  map[string]ComputeFunc
	functions map[string]*Function
	resources map[string]*Resource
	inputs    map[string]struct{}

	// metafeatureIDs preserves the catalog's declared order.
	metafeatureIDs []string
	loaded         bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		handlers:  make(map[string]ComputeFunc),
		functions: make(map[string]*Function),
		resources: make(map[string]*Resource),
		inputs:    make(map[string]struct{}),
	}
}

// RegisterFunction registers the Go handler for a function id. Registering
// the same id twice is a programming error and panics.
func (r *Registry) RegisterFunction(id string, fn ComputeFunc) {
	if _, exists := r.handlers[id]; exists {
		panic(fmt.Sprintf("function handler with id '%s' already registered", id))
	}
	slog.Debug("Registering function handler.", "id", id)
	r.handlers[id] = fn
}

// Handler returns the Go handler registered for a function id.
func (r *Registry) Handler(id string) (ComputeFunc, bool) {
	fn, ok := r.handlers[id]
	return fn, ok
}

// Describe returns the declared descriptor for a resource name.
func (r *Registry) Describe(name string) (*Resource, bool) {
	res, ok := r.resources[name]
	return res, ok
}

// Function returns the declared descriptor for a function id.
func (r *Registry) Function(id string) (*Function, bool) {
	fn, ok := r.functions[id]
	return fn, ok
}

// Has reports whether the name is a declared resource or a session input.
func (r *Registry) Has(name string) bool {
	if _, ok := r.resources[name]; ok {
		return true
	}
	_, ok := r.inputs[name]
	return ok
}

// IsInput reports whether the name is a session-seeded raw input.
func (r *Registry) IsInput(name string) bool {
	_, ok := r.inputs[name]
	return ok
}

// EffectiveParams returns the parameter list used to resolve the resource:
// the resource-level override when present, otherwise the function's.
func (r *Registry) EffectiveParams(res *Resource) []ParamRef {
	if res.Params != nil {
		return res.Params
	}
	return r.functions[res.Function].Params
}

// EffectiveReturns returns the output-name list for the resource's call.
func (r *Registry) EffectiveReturns(res *Resource) []string {
	if res.Returns != nil {
		return res.Returns
	}
	return r.functions[res.Function].Returns
}

// EffectiveSeedOffset returns the seed offset attached to the resource or,
// if absent there, inherited from its function.
func (r *Registry) EffectiveSeedOffset(res *Resource) int64 {
	if res.SeedOffset != nil {
		return *res.SeedOffset
	}
	return r.functions[res.Function].SeedOffset
}

// Metafeatures returns the metafeature names in catalog order.
func (r *Registry) Metafeatures() []string {
	out := make([]string, len(r.metafeatureIDs))
	copy(out, r.metafeatureIDs)
	return out
}

// Landmarking returns the metafeature names in the landmarking group, the
// cross-validated classifier measures.
func (r *Registry) Landmarking() []string {
	var out []string
	for _, id := range r.metafeatureIDs {
		if strings.Contains(id, "ErrRate") || strings.Contains(id, "Kappa") {
			out = append(out, id)
		}
	}
	return out
}

// TargetDependent returns the metafeature names whose computation graph
// reaches the target column.
func (r *Registry) TargetDependent() []string {
	var out []string
	for _, id := range r.metafeatureIDs {
		if r.IsTargetDependent(id) {
			out = append(out, id)
		}
	}
	return out
}

// ResourceNames returns every declared resource name, sorted.
func (r *Registry) ResourceNames() []string {
	out := make([]string, 0, len(r.resources))
	for name := range r.resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
