// Package infotheory provides the information-theoretic metafeatures:
// entropies of the target and of the (binned) features, mutual information
// with the target, and the measures derived from them.
package infotheory

import (
	"context"
	"math"

	"github.com/vk/metafeatgo/internal/registry"
	"github.com/vk/metafeatgo/pkg/dataset"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the package's producing functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("class_entropy", classEntropy)
	r.RegisterFunction("attribute_entropy", attributeEntropy)
	r.RegisterFunction("mutual_information", mutualInformation)
	r.RegisterFunction("equivalent_number_of_features", equivalentNumberOfFeatures)
	r.RegisterFunction("noise_signal_ratio", noiseSignalRatio)
}

// classEntropy reports the entropy of the target's class distribution.
// Args: YSample.
func classEntropy(_ context.Context, call registry.Call) ([]any, error) {
	y := call.Args[0].(*dataset.Series)
	return []any{entropy(y.Labels())}, nil
}

// attributeEntropy reports aggregate entropy over every categorical feature
// and every binned numeric feature.
// Args: NoNaNCategoricalFeatures, BinnedNumericFeatures.
func attributeEntropy(_ context.Context, call registry.Call) ([]any, error) {
	categorical := call.Args[0].([]dataset.Column)
	binned := call.Args[1].([]dataset.Column)

	var entropies []float64
	for _, col := range append(append([]dataset.Column{}, categorical...), binned...) {
		if len(col.Values) == 0 {
			continue
		}
		entropies = append(entropies, entropy(col.Values))
	}
	min, max, mean, stdev := aggregate(entropies)
	return []any{min, max, mean, stdev}, nil
}

// mutualInformation reports the mean and standard deviation of the mutual
// information between each feature and the target class.
// Args: NoNaNCategoricalFeaturesAndClass, BinnedNumericFeaturesAndClass.
func mutualInformation(_ context.Context, call registry.Call) ([]any, error) {
	categorical := call.Args[0].([]dataset.FeatureClassPair)
	binned := call.Args[1].([]dataset.FeatureClassPair)

	var scores []float64
	for _, pair := range append(append([]dataset.FeatureClassPair{}, categorical...), binned...) {
		if len(pair.Feature.Values) == 0 {
			continue
		}
		scores = append(scores, pairMutualInformation(pair))
	}
	_, _, mean, stdev := aggregate(scores)
	return []any{mean, stdev}, nil
}

// equivalentNumberOfFeatures is the class entropy divided by the mean
// feature/target mutual information, the number of ideal independent
// features the dataset would need. Args: ClassEntropy,
// MeanMutualInformation.
func equivalentNumberOfFeatures(_ context.Context, call registry.Call) ([]any, error) {
	classEnt := call.Args[0].(float64)
	meanMI := call.Args[1].(float64)
	if meanMI == 0 {
		return []any{math.NaN()}, nil
	}
	return []any{classEnt / meanMI}, nil
}

// noiseSignalRatio relates the non-informative part of the attribute
// entropy to the informative part. Args: MeanAttributeEntropy,
// MeanMutualInformation.
func noiseSignalRatio(_ context.Context, call registry.Call) ([]any, error) {
	meanEnt := call.Args[0].(float64)
	meanMI := call.Args[1].(float64)
	if meanMI == 0 {
		return []any{math.NaN()}, nil
	}
	return []any{(meanEnt - meanMI) / meanMI}, nil
}

// entropy computes the natural-log entropy of a label distribution.
func entropy(labels []string) float64 {
	counts := make(map[string]int)
	for _, label := range labels {
		counts[label]++
	}
	total := float64(len(labels))
	if total == 0 {
		return math.NaN()
	}
	h := 0.0
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log(p)
	}
	return h
}

// pairMutualInformation computes I(feature; class) = H(f) + H(c) - H(f,c).
func pairMutualInformation(pair dataset.FeatureClassPair) float64 {
	joint := make([]string, len(pair.Class))
	for i := range pair.Class {
		joint[i] = pair.Feature.Values[i] + "\x00" + pair.Class[i]
	}
	mi := entropy(pair.Feature.Values) + entropy(pair.Class) - entropy(joint)
	if mi < 0 {
		// Floating error can push an independent pair a hair below zero.
		mi = 0
	}
	return mi
}

// aggregate summarizes a slice as (min, max, mean, stdev); an empty slice
// yields NaNs.
func aggregate(values []float64) (min, max, mean, stdev float64) {
	if len(values) == 0 {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	min, max = values[0], values[0]
	sum := 0.0
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
		sum += v
	}
	mean = sum / float64(len(values))
	if len(values) < 2 {
		return min, max, mean, 0
	}
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	stdev = math.Sqrt(ss / float64(len(values)-1))
	return min, max, mean, stdev
}
