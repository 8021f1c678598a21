// Package sampling provides the producing functions that turn the raw
// feature table into the shared intermediate resources every other module
// computes from: the seeded row/column sample, the imputed one-hot encoded
// table, and the per-type feature splits.
package sampling

import (
	"github.com/vk/metafeatgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the package's producing functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("sample_columns", sampleColumns)
	r.RegisterFunction("sample_rows", sampleRows)
	r.RegisterFunction("preprocess", preprocess)
	r.RegisterFunction("categorical_features", categoricalFeatures)
	r.RegisterFunction("categorical_features_with_class", categoricalFeaturesWithClass)
	r.RegisterFunction("numeric_features", numericFeatures)
	r.RegisterFunction("binned_numeric_features", binnedNumericFeatures)
	r.RegisterFunction("binned_numeric_features_with_class", binnedNumericFeaturesWithClass)
}
