// Package validation checks caller-supplied compute arguments before any
// resource is touched. Every violation here is a fatal, pre-flight error;
// soft per-resource failures are the engine's business, not ours.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// Request carries the compute arguments under validation. Optional fields
// are nil when the caller omitted them; Check is invoked a second time after
// defaults are filled in, so defaulted values get re-validated too.
type Request struct {
	Features    *dataset.Table
	Target      *dataset.Series
	ColumnTypes map[string]dataset.ColumnType
	ResourceIDs []string
	SampleShape *dataset.SampleShape
	Folds       int
}

// bounds groups the scalar fields that tag-based validation can cover.
type bounds struct {
	Folds int `validate:"gte=2"`
	Rows  int `validate:"omitempty,gte=1"`
	Cols  int `validate:"omitempty,gte=1"`
}

var scalarValidator = validator.New(validator.WithRequiredStructEnabled())

// Check runs every argument check in order and returns the first violation.
// Individual checks collect all offenders of their kind before reporting.
func Check(reg *registry.Registry, req Request) error {
	checks := []func(*registry.Registry, Request) error{
		checkFeatures,
		checkTarget,
		checkColumnTypes,
		checkResourceIDs,
		checkScalars,
		checkSampleShape,
		checkFolds,
	}
	for _, check := range checks {
		if err := check(reg, req); err != nil {
			return err
		}
	}
	return nil
}

func checkFeatures(_ *registry.Registry, req Request) error {
	if req.Features == nil {
		return fmt.Errorf("features must be a non-nil dataset.Table")
	}
	return nil
}

func checkTarget(_ *registry.Registry, req Request) error {
	if req.Target == nil {
		return nil
	}
	if req.Target.Name == "" {
		return fmt.Errorf("target must be a named dataset.Series")
	}
	if req.Target.Len() != req.Features.NumRows() {
		return fmt.Errorf("target must be aligned with the features: %d rows vs %d",
			req.Target.Len(), req.Features.NumRows())
	}
	return nil
}

func checkColumnTypes(_ *registry.Registry, req Request) error {
	if req.ColumnTypes == nil {
		return nil
	}

	expected := make(map[string]struct{}, req.Features.NumCols()+1)
	for _, name := range req.Features.ColumnNames() {
		expected[name] = struct{}{}
	}
	if req.Target != nil {
		expected[req.Target.Name] = struct{}{}
	}

	var missing, unexpected []string
	for name := range expected {
		if _, ok := req.ColumnTypes[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range req.ColumnTypes {
		if _, ok := expected[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(unexpected)
	if len(missing) > 0 || len(unexpected) > 0 {
		return fmt.Errorf(
			"column types must cover exactly the feature columns%s: missing %v, unexpected %v",
			targetSuffix(req.Target), missing, unexpected)
	}

	var invalid []string
	for name, colType := range req.ColumnTypes {
		if !colType.Valid() {
			invalid = append(invalid, fmt.Sprintf("%s=%s", name, colType))
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return fmt.Errorf(
			"one or more input column types are not valid: %v; valid types are %s and %s",
			invalid, dataset.Numeric, dataset.Categorical)
	}
	return nil
}

func targetSuffix(target *dataset.Series) string {
	if target == nil {
		return ""
	}
	return " plus the target"
}

func checkResourceIDs(reg *registry.Registry, req Request) error {
	if req.ResourceIDs == nil {
		return nil
	}
	var invalid []string
	for _, id := range req.ResourceIDs {
		if _, ok := reg.Describe(id); !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("one or more requested metafeatures are not valid: %v", invalid)
	}
	return nil
}

func checkScalars(_ *registry.Registry, req Request) error {
	b := bounds{Folds: req.Folds}
	if req.SampleShape != nil {
		b.Rows = req.SampleShape.Rows
		b.Cols = req.SampleShape.Cols
	}
	err := scalarValidator.Struct(b)
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, v := range violations {
		switch v.StructField() {
		case "Folds":
			return fmt.Errorf("folds must be an integer >= 2, but was %d", req.Folds)
		case "Rows":
			return fmt.Errorf("cannot sample less than one row")
		case "Cols":
			return fmt.Errorf("cannot sample less than one column")
		}
	}
	return err
}

func checkSampleShape(_ *registry.Registry, req Request) error {
	if req.SampleShape == nil || req.SampleShape.Rows == 0 || req.Target == nil {
		return nil
	}
	minRows := len(req.Target.Classes()) * req.Folds
	if req.SampleShape.Rows < minRows {
		return fmt.Errorf("cannot sample less than %d rows from the target", minRows)
	}
	return nil
}

func checkFolds(reg *registry.Registry, req Request) error {
	if req.Target == nil || req.ResourceIDs == nil {
		return nil
	}
	landmarking := make(map[string]struct{})
	for _, id := range reg.Landmarking() {
		landmarking[id] = struct{}{}
	}
	requested := false
	for _, id := range req.ResourceIDs {
		if _, ok := landmarking[id]; ok {
			requested = true
			break
		}
	}
	if !requested {
		return nil
	}
	// Cross-validated metafeatures need at least one row of every class in
	// every fold.
	counts := req.Target.ClassCounts()
	classes := req.Target.Classes()
	var undersized []string
	for _, class := range classes {
		if counts[class] < req.Folds {
			undersized = append(undersized,
				fmt.Sprintf("class %q has %d", class, counts[class]))
		}
	}
	if len(undersized) > 0 {
		return fmt.Errorf(
			"the minimum number of rows in each class of the target is folds=%d: %s",
			req.Folds, strings.Join(undersized, ", "))
	}
	return nil
}
