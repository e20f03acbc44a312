package scoring

import (
	"context"
	"math"

	"github.com/wardsight/wardsight/internal/domain/vitals"
)

// Default logistic coefficients, fitted offline against the
// historical vitals dataset.
var defaultWeights = map[string]float64{
	vitals.HRMean:   0.08,
	vitals.SBPMean:  -0.05,
	vitals.DBPMean:  0.02,
	vitals.SpO2Mean: -0.35,
}

const defaultIntercept = 30.0

// Option applies a configuration option to the LogisticModel.
type Option func(*LogisticModel)

// WithFeatureWeights overrides individual feature coefficients.
// Unknown feature names are ignored.
func WithFeatureWeights(weights map[string]float64) Option {
	return func(m *LogisticModel) {
		for _, name := range vitals.ModelFeatures() {
			if w, ok := weights[name]; ok {
				m.weights[name] = w
			}
		}
	}
}

// WithIntercept overrides the model intercept.
func WithIntercept(intercept float64) Option {
	return func(m *LogisticModel) {
		m.intercept = intercept
	}
}

// LogisticModel is a binary logistic regression over the model
// feature vector. It is stateless after construction and safe for
// concurrent use.
type LogisticModel struct {
	weights   map[string]float64
	intercept float64
}

// NewLogisticModel creates the model with its fitted coefficients.
func NewLogisticModel(opts ...Option) *LogisticModel {
	m := &LogisticModel{
		weights:   make(map[string]float64, len(defaultWeights)),
		intercept: defaultIntercept,
	}
	for name, w := range defaultWeights {
		m.weights[name] = w
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PredictProba computes [p(stable), p(at-risk)] for a feature
// vector in vitals.ModelFeatures order.
func (m *LogisticModel) PredictProba(_ context.Context, features []float64) ([2]float64, error) {
	names := vitals.ModelFeatures()
	if len(features) != len(names) {
		return [2]float64{}, ErrFeatureVectorSize
	}
	z := m.intercept
	for i, name := range names {
		z += m.weights[name] * features[i]
	}
	p1 := 1.0 / (1.0 + math.Exp(-z))
	return [2]float64{1.0 - p1, p1}, nil
}
