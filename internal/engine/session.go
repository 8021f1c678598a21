package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vk/metafeatgo/internal/ctxlog"
	"github.com/vk/metafeatgo/internal/registry"
)

// entry is one cached resolution: the value plus the cumulative wall-clock
// seconds spent producing it. The seconds are NaN for uncomputable entries.
type entry struct {
	val     Value
	seconds float64
}

// Session owns the cache for one top-level compute call. It is created at
// the start of the call, populated lazily, and discarded at the end; nothing
// is reused across calls. A Session is not safe for concurrent use;
// concurrent requests must each construct their own.
type Session struct {
	reg   *registry.Registry
	seeds Seeds
	cache map[string]entry
}

// NewSession creates an empty session over the given catalog and base seed.
func NewSession(reg *registry.Registry, baseSeed int64) *Session {
	return &Session{
		reg:   reg,
		seeds: Seeds{Base: baseSeed},
		cache: make(map[string]entry),
	}
}

// Seed stores a raw input value under the given name with zero cost.
func (s *Session) Seed(name string, v any) {
	s.cache[name] = entry{val: Computed(v)}
}

// Resolve returns the value and cumulative compute seconds for a resource,
// computing and caching it (and every sibling output of the same call) on
// first use. A missing dependency yields the uncomputable marker with NaN
// seconds; an error from a producing function is fatal and aborts the whole
// request.
func (s *Session) Resolve(ctx context.Context, name string) (Value, float64, error) {
	if e, ok := s.cache[name]; ok {
		return e.val, e.seconds, nil
	}

	res, ok := s.reg.Describe(name)
	if !ok {
		return Value{}, 0, fmt.Errorf("unknown resource '%s'", name)
	}
	returns := s.reg.EffectiveReturns(res)

	args, paramSeconds, reason, err := s.resolveParams(ctx, res)
	if err != nil {
		return Value{}, 0, err
	}

	if reason != "" {
		// Do not invoke the producing function: mark every declared output
		// uncomputable so dependents short-circuit the same way.
		for _, out := range returns {
			s.cache[out] = entry{val: Uncomputable(reason), seconds: math.NaN()}
		}
	} else {
		fn, _ := s.reg.Handler(res.Function)
		seed := s.seeds.For(s.reg.EffectiveSeedOffset(res))

		start := time.Now()
		results, err := fn(ctx, registry.Call{Args: args, Seed: seed})
		elapsed := time.Since(start).Seconds()
		if err != nil {
			return Value{}, 0, fmt.Errorf("computing resource '%s': %w", name, err)
		}
		if len(results) != len(returns) {
			return Value{}, 0, fmt.Errorf(
				"function '%s' returned %d values, resource '%s' declares %d outputs",
				res.Function, len(results), name, len(returns))
		}

		ctxlog.FromContext(ctx).Debug("Resource computed.",
			"resource", name, "function", res.Function, "seconds", elapsed)

		// Shared-cost accounting: every output of the one call carries the
		// same cumulative time.
		total := paramSeconds + elapsed
		for i, out := range returns {
			s.cache[out] = entry{val: Computed(results[i]), seconds: total}
		}
	}

	e := s.cache[name]
	return e.val, e.seconds, nil
}

// resolveParams resolves the resource's declared parameters in order.
// Literals cost nothing. If any parameter is missing, resolution of the
// remainder stops and the reason is returned.
func (s *Session) resolveParams(ctx context.Context, res *registry.Resource) ([]any, float64, string, error) {
	params := s.reg.EffectiveParams(res)
	args := make([]any, 0, len(params))
	total := 0.0
	for _, p := range params {
		if p.IsLiteral() {
			v, err := p.Value()
			if err != nil {
				return nil, 0, "", fmt.Errorf("resource '%s': %w", res.Name, err)
			}
			args = append(args, v)
			continue
		}
		v, seconds, err := s.Resolve(ctx, p.Name())
		if err != nil {
			return nil, 0, "", err
		}
		if v.missing() {
			reason := v.Reason()
			if reason == "" {
				reason = fmt.Sprintf("dependency '%s' is not a number", p.Name())
			}
			return nil, 0, reason, nil
		}
		args = append(args, v.Raw())
		total += seconds
	}
	return args, total, "", nil
}
