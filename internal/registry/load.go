package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/metafeatgo/internal/ctxlog"
	"github.com/vk/metafeatgo/internal/dag"
)

// manifestFile is the top-level structure of a catalog manifest.
type manifestFile struct {
	Inputs       []*inputBlock    `hcl:"input,block"`
	Functions    []*functionBlock `hcl:"function,block"`
	Resources    []*resourceBlock `hcl:"resource,block"`
	Metafeatures []*resourceBlock `hcl:"metafeature,block"`
}

// inputBlock declares a raw input seeded into every session by the caller.
type inputBlock struct {
	Name string `hcl:"name,label"`
}

// functionBlock declares a producing function's parameter and output lists.
type functionBlock struct {
	ID         string     `hcl:"id,label"`
	Params     *cty.Value `hcl:"params,optional"`
	Returns    []string   `hcl:"returns"`
	SeedOffset *int64     `hcl:"seed_offset,optional"`
}

// resourceBlock declares one resource or metafeature node of the graph.
type resourceBlock struct {
	Name       string     `hcl:"name,label"`
	Function   string     `hcl:"function"`
	Params     *cty.Value `hcl:"params,optional"`
	Returns    []string   `hcl:"returns,optional"`
	SeedOffset *int64     `hcl:"seed_offset,optional"`
}

// Load parses an HCL catalog manifest, populates the registry and runs the
// load-time validation: unknown function ids, arity mismatches, dangling
// parameter references, output-name collisions and dependency cycles all fail
// here, never during resolution. Go handlers must be registered before Load is called.
func (r *Registry) Load(ctx context.Context, filename string, src []byte) error {
	if r.loaded {
		return fmt.Errorf("registry already loaded")
	}
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parsing catalog manifest: %w", diags)
	}
	var manifest manifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &manifest); diags.HasErrors() {
		return fmt.Errorf("decoding catalog manifest: %w", diags)
	}

	var errs []string

	for _, in := range manifest.Inputs {
		if _, dup := r.inputs[in.Name]; dup {
			errs = append(errs, fmt.Sprintf("input '%s' declared more than once", in.Name))
		}
		r.inputs[in.Name] = struct{}{}
	}

	for _, fb := range manifest.Functions {
		if _, dup := r.functions[fb.ID]; dup {
			errs = append(errs, fmt.Sprintf("function '%s' declared more than once", fb.ID))
			continue
		}
		fn := &Function{ID: fb.ID, Returns: fb.Returns}
		if fb.SeedOffset != nil {
			fn.SeedOffset = *fb.SeedOffset
		}
		if fb.Params != nil {
			params, err := paramRefs(*fb.Params)
			if err != nil {
				errs = append(errs, fmt.Sprintf("function '%s': %v", fb.ID, err))
				continue
			}
			fn.Params = params
		}
		if len(fn.Returns) == 0 {
			errs = append(errs, fmt.Sprintf("function '%s' declares no outputs", fb.ID))
		}
		if _, ok := r.handlers[fb.ID]; !ok {
			errs = append(errs, fmt.Sprintf("function '%s' has no registered Go handler", fb.ID))
		}
		r.functions[fb.ID] = fn
	}

	decode := func(rb *resourceBlock, metafeature bool) {
		if _, dup := r.resources[rb.Name]; dup {
			errs = append(errs, fmt.Sprintf("resource '%s' declared more than once", rb.Name))
			return
		}
		if _, isInput := r.inputs[rb.Name]; isInput {
			errs = append(errs, fmt.Sprintf("resource '%s' collides with an input of the same name", rb.Name))
			return
		}
		res := &Resource{
			Name:        rb.Name,
			Function:    rb.Function,
			Returns:     rb.Returns,
			SeedOffset:  rb.SeedOffset,
			Metafeature: metafeature,
		}
		if rb.Params != nil {
			params, err := paramRefs(*rb.Params)
			if err != nil {
				errs = append(errs, fmt.Sprintf("resource '%s': %v", rb.Name, err))
				return
			}
			res.Params = params
		}
		r.resources[rb.Name] = res
		if metafeature {
			r.metafeatureIDs = append(r.metafeatureIDs, rb.Name)
		}
	}
	for _, rb := range manifest.Resources {
		decode(rb, false)
	}
	for _, rb := range manifest.Metafeatures {
		decode(rb, true)
	}

	// Cross checks need the full name set, so they run after decoding.
	graph := dag.New()
	for name := range r.inputs {
		graph.AddNode(name)
	}
	for name := range r.resources {
		graph.AddNode(name)
	}
	// Sibling resources naming outputs of one shared call are fine; the same
	// output name claimed by two distinct calls would make its cached value
	// depend on resolution order.
	type outputOwner struct {
		resource string
		call     string
	}
	owners := make(map[string]outputOwner)
	for _, res := range r.resources {
		fn, ok := r.functions[res.Function]
		if !ok {
			errs = append(errs, fmt.Sprintf("resource '%s' references unknown function '%s'", res.Name, res.Function))
			continue
		}
		if res.Returns != nil && len(res.Returns) != len(fn.Returns) {
			errs = append(errs, fmt.Sprintf(
				"resource '%s' overrides outputs with arity %d, function '%s' declares %d",
				res.Name, len(res.Returns), fn.ID, len(fn.Returns)))
			continue
		}
		returns := r.EffectiveReturns(res)
		named := false
		for _, out := range returns {
			if out == res.Name {
				named = true
				break
			}
		}
		if !named {
			errs = append(errs, fmt.Sprintf("resource '%s' is not among its call's outputs %v", res.Name, returns))
		}
		call := r.callSignature(res)
		for _, out := range returns {
			if _, isInput := r.inputs[out]; isInput {
				errs = append(errs, fmt.Sprintf("resource '%s' declares output '%s', which collides with an input", res.Name, out))
				continue
			}
			if owner, seen := owners[out]; seen {
				if owner.call != call {
					errs = append(errs, fmt.Sprintf(
						"output '%s' is declared by resources '%s' and '%s' with different calls",
						out, owner.resource, res.Name))
				}
				continue
			}
			owners[out] = outputOwner{resource: res.Name, call: call}
		}
		for _, p := range r.EffectiveParams(res) {
			if p.IsLiteral() {
				continue
			}
			if !r.Has(p.Name()) {
				errs = append(errs, fmt.Sprintf("resource '%s' references unknown parameter '%s'", res.Name, p.Name()))
				continue
			}
			if err := graph.AddEdge(p.Name(), res.Name); err != nil {
				errs = append(errs, fmt.Sprintf("resource '%s': %v", res.Name, err))
			}
		}
	}

	if len(errs) == 0 {
		if err := graph.DetectCycles(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	r.loaded = true
	logger.Debug("Catalog manifest loaded.",
		"inputs", len(r.inputs),
		"functions", len(r.functions),
		"resources", len(r.resources),
		"metafeatures", len(r.metafeatureIDs),
	)
	return nil
}

// callSignature renders the call a resource describes: function id, effective
// parameters, outputs and seed offset. Resources with equal signatures share
// one cached invocation.
func (r *Registry) callSignature(res *Resource) string {
	var sb strings.Builder
	sb.WriteString(res.Function)
	for _, p := range r.EffectiveParams(res) {
		sb.WriteByte('(')
		if p.IsLiteral() {
			sb.WriteString(p.literal.GoString())
		} else {
			sb.WriteString(p.ref)
		}
		sb.WriteByte(')')
	}
	sb.WriteString("->")
	sb.WriteString(strings.Join(r.EffectiveReturns(res), ","))
	fmt.Fprintf(&sb, "@%d", r.EffectiveSeedOffset(res))
	return sb.String()
}

// paramRefs converts a decoded params attribute into parameter references.
// Strings name resources; numbers and bools are literal constants.
func paramRefs(v cty.Value) ([]ParamRef, error) {
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("params must be a list, got %s", ty.FriendlyName())
	}
	var out []ParamRef
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		switch el.Type() {
		case cty.String:
			out = append(out, Ref(el.AsString()))
		case cty.Number, cty.Bool:
			out = append(out, Literal(el))
		default:
			return nil, fmt.Errorf("unsupported parameter type %s", el.Type().FriendlyName())
		}
	}
	return out, nil
}
