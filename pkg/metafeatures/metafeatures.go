// Package metafeatures computes descriptive measures of a tabular dataset
// with a categorical target, for meta-learning and AutoML pipelines. The
// catalog of computable measures is declarative; values are resolved lazily
// through a memoizing session so shared intermediates (samples, encodings)
// are produced at most once per call.
package metafeatures

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"sync"

	"github.com/vk/metafeatgo/internal/engine"
	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/internal/validation"
	"github.com/vk/metafeatgo/modules/infotheory"
	"github.com/vk/metafeatgo/modules/landmarking"
	"github.com/vk/metafeatgo/modules/sampling"
	"github.com/vk/metafeatgo/modules/simple"
	"github.com/vk/metafeatgo/modules/statistical"
	"github.com/vk/metafeatgo/pkg/dataset"
)

//go:embed catalog.hcl
var catalogSource []byte

// Sentinel marks a metafeature that was skipped before evaluation because
// the target it needs is absent or not categorical.
type Sentinel string

const (
	// NoTargets is returned for a target-dependent metafeature when the
	// caller supplied no target.
	NoTargets Sentinel = "NO_TARGETS"
	// NumericTargets is returned for a target-dependent metafeature when
	// the supplied target is numeric rather than categorical.
	NumericTargets Sentinel = "NUMERIC_TARGETS"
)

// Group selects a subset of the catalog for List.
type Group string

const (
	GroupAll             Group = "all"
	GroupLandmarking     Group = "landmarking"
	GroupTargetDependent Group = "target_dependent"
)

// ComputeRequest carries the inputs of one compute call. Only Features is
// required; every other field has a default.
type ComputeRequest struct {
	// Features is the dataset's feature table.
	Features *dataset.Table
	// Target is the dataset's target column; nil when the dataset has none.
	Target *dataset.Series
	// ColumnTypes maps every feature column (plus the target, when present)
	// to NUMERIC or CATEGORICAL. Inferred from storage when nil.
	ColumnTypes map[string]dataset.ColumnType
	// MetafeatureIDs lists the metafeatures to compute. Nil means all.
	MetafeatureIDs []string
	// SampleShape bounds the row/column sample the expensive metafeatures
	// are computed on. Nil means no sampling.
	SampleShape *dataset.SampleShape
	// Seed is the base seed for all sampling. When nil one is drawn and
	// reported back on the result for reproducibility.
	Seed *int64
	// Folds is the cross-validation fold count for the landmarking
	// metafeatures. Zero means the default of 2.
	Folds int
}

// Metafeature is one computed result. Exactly one of the three cases holds:
// a sentinel (target gating, zero time), an uncomputable reason (NaN value
// and NaN time), or a concrete Value with its compute time in seconds.
type Metafeature struct {
	Value       any
	ComputeTime float64
	Sentinel    Sentinel
	Reason      string
}

// ComputeResult maps metafeature ids to their results and reports the base
// seed the call ran under.
type ComputeResult struct {
	Metafeatures map[string]Metafeature
	Seed         int64
}

var (
	loadOnce   sync.Once
	defaultReg *registry.Registry
	loadErr    error
)

func coreModules() []registry.Module {
	return []registry.Module{
		&sampling.Module{},
		&simple.Module{},
		&statistical.Module{},
		&infotheory.Module{},
		&landmarking.Module{},
	}
}

// catalog loads the embedded manifest once per process.
func catalog(ctx context.Context) (*registry.Registry, error) {
	loadOnce.Do(func() {
		r := registry.New()
		for _, m := range coreModules() {
			m.Register(r)
		}
		loadErr = r.Load(ctx, "catalog.hcl", catalogSource)
		defaultReg = r
	})
	if loadErr != nil {
		return nil, fmt.Errorf("loading metafeature catalog: %w", loadErr)
	}
	return defaultReg, nil
}

// List returns the metafeature ids in the given group, in catalog order.
func List(group Group) ([]string, error) {
	reg, err := catalog(context.Background())
	if err != nil {
		return nil, err
	}
	switch group {
	case GroupAll, "":
		return reg.Metafeatures(), nil
	case GroupLandmarking:
		return reg.Landmarking(), nil
	case GroupTargetDependent:
		return reg.TargetDependent(), nil
	default:
		return nil, fmt.Errorf("unknown metafeature group %q", group)
	}
}

// Compute resolves the requested metafeatures against a fresh session.
// Requesting an infeasible metafeature (missing target, empty numeric
// column set) never aborts the rest: such entries carry a sentinel or an
// uncomputable reason instead of a value. A failing producing function, by
// contrast, is fatal for the whole call.
func Compute(ctx context.Context, req ComputeRequest) (*ComputeResult, error) {
	reg, err := catalog(ctx)
	if err != nil {
		return nil, err
	}
	if req.Folds == 0 {
		req.Folds = 2
	}
	if err := validation.Check(reg, checkRequest(req)); err != nil {
		return nil, err
	}

	if req.ColumnTypes == nil {
		req.ColumnTypes = dataset.InferColumnTypes(req.Features, req.Target)
	}
	if req.MetafeatureIDs == nil {
		req.MetafeatureIDs = reg.Metafeatures()
	}
	if req.SampleShape == nil {
		req.SampleShape = &dataset.SampleShape{}
	}
	// Defaults go through the same checks the caller's values did.
	if err := validation.Check(reg, checkRequest(req)); err != nil {
		return nil, err
	}

	baseSeed := engine.RandomBase()
	if req.Seed != nil {
		baseSeed = *req.Seed
	}
	session := engine.NewSession(reg, baseSeed)
	session.Seed("XRaw", req.Features)
	session.Seed("X", req.Features.DropEmptyColumns())
	session.Seed(registry.TargetResource, req.Target)
	session.Seed("ColumnTypes", req.ColumnTypes)
	session.Seed("SampleShape", *req.SampleShape)
	session.Seed("NFolds", req.Folds)

	noTarget := req.Target == nil
	numericTarget := req.Target != nil &&
		req.ColumnTypes[req.Target.Name] == dataset.Numeric

	out := make(map[string]Metafeature, len(req.MetafeatureIDs))
	for _, id := range req.MetafeatureIDs {
		if reg.IsTargetDependent(id) && (noTarget || numericTarget) {
			sentinel := NoTargets
			if numericTarget {
				sentinel = NumericTargets
			}
			out[id] = Metafeature{Value: string(sentinel), Sentinel: sentinel}
			continue
		}
		value, seconds, err := session.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if value.IsUncomputable() {
			out[id] = Metafeature{
				Value:       math.NaN(),
				ComputeTime: math.NaN(),
				Reason:      value.Reason(),
			}
			continue
		}
		out[id] = Metafeature{Value: value.Raw(), ComputeTime: seconds}
	}
	return &ComputeResult{Metafeatures: out, Seed: baseSeed}, nil
}

func checkRequest(req ComputeRequest) validation.Request {
	return validation.Request{
		Features:    req.Features,
		Target:      req.Target,
		ColumnTypes: req.ColumnTypes,
		ResourceIDs: req.MetafeatureIDs,
		SampleShape: req.SampleShape,
		Folds:       req.Folds,
	}
}
