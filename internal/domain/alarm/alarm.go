// Package alarm evaluates canonical vitals against clinical
// thresholds and raises display alarms.
package alarm

import (
	"fmt"
	"sort"

	"github.com/wardsight/wardsight/internal/domain/types"
	"github.com/wardsight/wardsight/internal/domain/vitals"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// aiAlarmVital is the vital label used for risk-score alarms.
const aiAlarmVital = "AI Risk Score"

// Threshold is the acceptable inclusive range for one vital.
type Threshold struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Name string  `json:"name"`
}

// DefaultThresholds returns the adult clinical reference ranges.
func DefaultThresholds() map[string]Threshold {
	return map[string]Threshold{
		vitals.HRMean:   {Min: 60, Max: 100, Name: "HR"},
		vitals.RRMean:   {Min: 12, Max: 20, Name: "RR"},
		vitals.SpO2Mean: {Min: 94, Max: 100, Name: "SpO₂"},
		vitals.SBPMean:  {Min: 90, Max: 140, Name: "SBP"},
		vitals.DBPMean:  {Min: 60, Max: 90, Name: "DBP"},
	}
}

// Engine evaluates readings against a fixed threshold table. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	thresholds map[string]Threshold
}

// NewEngine creates an alarm engine. A nil table falls back to the
// default clinical ranges.
func NewEngine(thresholds map[string]Threshold) *Engine {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	copied := make(map[string]Threshold, len(thresholds))
	for k, v := range thresholds {
		copied[k] = v
	}
	return &Engine{thresholds: copied}
}

// Evaluate checks each present vital against its threshold and the
// prediction against the risk cutoff. It returns the raised alarms
// and the display readings keyed by the vital's display name.
// Features without a configured threshold produce neither a reading
// nor an alarm.
func (e *Engine) Evaluate(patientID string, c vitals.Canonical, prediction types.Prediction) ([]types.AlarmEvent, map[string]types.VitalReading) {
	alarms := []types.AlarmEvent{}
	readings := make(map[string]types.VitalReading, len(c))

	for _, feature := range sortedFeatures(c) {
		threshold, tracked := e.thresholds[feature]
		if !tracked {
			continue
		}

		value := c[feature]
		if value == nil {
			readings[threshold.Name] = types.VitalReading{Status: types.StatusStable}
			continue
		}

		formatted := fmt.Sprintf("%.1f", *value)
		if *value < threshold.Min || *value > threshold.Max {
			readings[threshold.Name] = types.VitalReading{Value: &formatted, Status: types.StatusCritical}
			alarms = append(alarms, types.AlarmEvent{
				PatientID: patientID,
				Vital:     threshold.Name,
				Level:     types.LevelCritical,
				Value:     formatted,
			})
			metrics.RecordAlarmRaised(threshold.Name)
			continue
		}
		readings[threshold.Name] = types.VitalReading{Value: &formatted, Status: types.StatusStable}
	}

	if prediction.Available && prediction.IsAtRisk {
		alarms = append(alarms, types.AlarmEvent{
			PatientID: patientID,
			Vital:     aiAlarmVital,
			Level:     types.LevelCritical,
			Value:     fmt.Sprintf("%.0f%%", prediction.RiskScorePercent),
		})
		metrics.RecordAlarmRaised(aiAlarmVital)
	}

	return alarms, readings
}

func sortedFeatures(c vitals.Canonical) []string {
	features := make([]string, 0, len(c))
	for feature := range c {
		features = append(features, feature)
	}
	sort.Strings(features)
	return features
}
