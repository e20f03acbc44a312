// Package vitals provides tolerant parsing of raw device vital
// values and the canonical feature vocabulary used downstream.
package vitals

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Canonical feature names.
const (
	HRMean   = "hr_mean"
	SBPMean  = "sbp_mean"
	DBPMean  = "dbp_mean"
	SpO2Mean = "spo2_mean"
	RRMean   = "rr_mean"
)

// modelFeatures is the exact feature order the risk model was
// trained with. Changing the order invalidates the model.
var modelFeatures = []string{HRMean, SBPMean, DBPMean, SpO2Mean}

// trackedFeatures covers everything shown and alarmed on, which is
// the model inputs plus respiratory rate.
var trackedFeatures = []string{HRMean, SBPMean, DBPMean, SpO2Mean, RRMean}

// Canonical maps canonical feature names to parsed values.
// A nil entry means the feature was mapped but unparseable or
// absent from the reading.
type Canonical map[string]*float64

// ModelFeatures returns the model input features in training order.
func ModelFeatures() []string {
	out := make([]string, len(modelFeatures))
	copy(out, modelFeatures)
	return out
}

// TrackedFeatures returns every canonical feature the system
// displays or evaluates thresholds for.
func TrackedFeatures() []string {
	out := make([]string, len(trackedFeatures))
	copy(out, trackedFeatures)
	return out
}

// IsTracked reports whether name is a canonical tracked feature.
func IsTracked(name string) bool {
	for _, f := range trackedFeatures {
		if f == name {
			return true
		}
	}
	return false
}

// Parse extracts a float from an arbitrary device field value.
// Strings are cleaned of units and decoration before parsing;
// "98%" and " 120 mmHg" both parse. Unparseable, boolean, nil,
// and non-finite values return nil.
func Parse(raw any) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return nil
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return finite(float64(v))
	case int32:
		return finite(float64(v))
	case int64:
		return finite(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return finite(f)
	case string:
		return parseString(v)
	default:
		return nil
	}
}

func parseString(s string) *float64 {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." || cleaned == "-." {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
