package registry

// Names with hardcoded target-dependence. The target itself is always
// dependent; the resampled feature table is not, even though the sampler
// consults the target for stratification: dependence only flows through
// actual use of the target's values.
const (
	TargetResource = "Y"
	SampleResource = "XSample"
)

// IsTargetDependent reports whether computing the named resource requires
// the target column. It is a static reachability check over declared
// parameter edges; both a resource's own parameter override and its
// function's declared parameter list are followed.
func (r *Registry) IsTargetDependent(name string) bool {
	if name == TargetResource {
		return true
	}
	if name == SampleResource {
		return false
	}
	res, ok := r.resources[name]
	if !ok {
		// Session inputs other than Y carry no target dependence.
		return false
	}
	for _, p := range res.Params {
		if !p.IsLiteral() && r.IsTargetDependent(p.Name()) {
			return true
		}
	}
	for _, p := range r.functions[res.Function].Params {
		if !p.IsLiteral() && r.IsTargetDependent(p.Name()) {
			return true
		}
	}
	return false
}
