// Package scoring defines the contract for computing deterioration
// risk from canonical vitals.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/wardsight/wardsight/internal/domain/types"
	"github.com/wardsight/wardsight/internal/domain/vitals"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// riskThresholdPercent is the cutoff above which a patient is
// flagged at risk.
const riskThresholdPercent = 70.0

const nanosPerMillisecond = 1e6

// Model produces class probabilities for one feature vector laid
// out in vitals.ModelFeatures order. The returned pair is
// [p(stable), p(at-risk)] and must sum to one.
type Model interface {
	PredictProba(ctx context.Context, features []float64) ([2]float64, error)
}

// Scorer turns canonical vitals into a risk prediction.
type Scorer struct {
	model Model
}

// NewScorer creates a scorer backed by the given model. A nil model
// yields unavailable predictions rather than failures.
func NewScorer(model Model) *Scorer {
	return &Scorer{model: model}
}

// Score builds the model feature vector from canonical vitals and
// returns the prediction. Missing features are substituted with
// zero, matching how the model was trained on sparse windows.
func (s *Scorer) Score(ctx context.Context, c vitals.Canonical) types.Prediction {
	if s == nil || s.model == nil {
		metrics.RecordScoringUnavailable()
		return types.Prediction{}
	}

	names := vitals.ModelFeatures()
	features := make([]float64, len(names))
	for i, name := range names {
		if v := c[name]; v != nil {
			features[i] = *v
		}
	}

	start := time.Now()
	proba, err := s.model.PredictProba(ctx, features)
	metrics.RecordScoringLatency(float64(time.Since(start).Nanoseconds()) / nanosPerMillisecond)
	if err != nil {
		metrics.RecordScoringError()
		return types.Prediction{}
	}

	risk := math.Round(proba[1]*100*100) / 100
	return types.Prediction{
		RiskScorePercent: risk,
		IsAtRisk:         risk > riskThresholdPercent,
		Available:        true,
	}
}
