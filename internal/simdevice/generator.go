package simdevice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileDivisor     = 9
	decorationDivisor  = 5
)

// Normal vital ranges for a stable adult patient.
const (
	stableHRMin    = 62.0
	stableHRRange  = 28.0
	stableRRMin    = 12.0
	stableRRRange  = 7.0
	stableSpO2Min  = 95.0
	stableSpO2Max  = 100.0
	stableSBPMin   = 100.0
	stableSBPRange = 32.0
	stableDBPMin   = 64.0
	stableDBPRange = 20.0
)

// Excursion ranges for deteriorating profiles.
const (
	tachyHRMin     = 115.0
	tachyHRRange   = 40.0
	bradyHRMin     = 35.0
	bradyHRRange   = 20.0
	hypoxiaMin     = 80.0
	hypoxiaRange   = 12.0
	hypoSBPMin     = 70.0
	hypoSBPRange   = 18.0
	hyperSBPMin    = 150.0
	hyperSBPRange  = 40.0
	tachypneaMin   = 24.0
	tachypneaRange = 11.0
)

// Patient condition profiles. Stable dominates so most readings stay
// inside the alarm thresholds; the excursion profiles drive threshold
// breaches and high risk scores.
const (
	profileStable        = 0
	profileStableSecond  = 1
	profileStableThird   = 2
	profileTachycardia   = 3
	profileBradycardia   = 4
	profileHypoxia       = 5
	profileHypotension   = 6
	profileDeterioration = 7
	profileHypertension  = 8
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateReading produces one sample for a simulated device. A
// fraction of values arrive as decorated strings the way real vendor
// payloads do, so the ingest path's tolerant parsing gets exercised.
func generateReading(deviceID, deviceType string) Reading {
	hr, rr, spo2, sbp, dbp := generateProfileVitals()

	return Reading{
		DeviceID:   deviceID,
		DeviceType: deviceType,
		TS:         time.Now().UTC().Format(time.RFC3339),
		Data: map[string]any{
			"HeartRate": round1(hr),
			"RespRate":  round1(rr),
			"SpO2":      decorateSpO2(spo2),
			"Systolic":  decorateBP(sbp),
			"Diastolic": round1(dbp),
		},
	}
}

// generateProfileVitals picks a condition profile and draws a
// correlated vital set from it.
func generateProfileVitals() (hr, rr, spo2, sbp, dbp float64) {
	// Stable baseline, overridden per profile.
	hr = stableHRMin + getRandomFloat()*stableHRRange
	rr = stableRRMin + getRandomFloat()*stableRRRange
	spo2 = stableSpO2Min + getRandomFloat()*(stableSpO2Max-stableSpO2Min)
	sbp = stableSBPMin + getRandomFloat()*stableSBPRange
	dbp = stableDBPMin + getRandomFloat()*stableDBPRange

	randNum, _ := rand.Int(rand.Reader, big.NewInt(profileDivisor))
	switch randNum.Int64() {
	case profileStable, profileStableSecond, profileStableThird:
		// Keep the baseline.
	case profileTachycardia:
		hr = tachyHRMin + getRandomFloat()*tachyHRRange
		rr = tachypneaMin + getRandomFloat()*tachypneaRange
	case profileBradycardia:
		hr = bradyHRMin + getRandomFloat()*bradyHRRange
	case profileHypoxia:
		spo2 = hypoxiaMin + getRandomFloat()*hypoxiaRange
		rr = tachypneaMin + getRandomFloat()*tachypneaRange
	case profileHypotension:
		sbp = hypoSBPMin + getRandomFloat()*hypoSBPRange
		dbp = sbp * 0.6
	case profileDeterioration:
		// Compound crash: the pattern the risk model weights hardest.
		hr = tachyHRMin + getRandomFloat()*tachyHRRange
		spo2 = hypoxiaMin + getRandomFloat()*hypoxiaRange
		sbp = hypoSBPMin + getRandomFloat()*hypoSBPRange
		dbp = sbp * 0.6
		rr = tachypneaMin + getRandomFloat()*tachypneaRange
	case profileHypertension:
		sbp = hyperSBPMin + getRandomFloat()*hyperSBPRange
		dbp = 92.0 + getRandomFloat()*20.0
	}
	return hr, rr, spo2, sbp, dbp
}

// decorateSpO2 sometimes renders the saturation as a percent string.
func decorateSpO2(v float64) any {
	n, _ := rand.Int(rand.Reader, big.NewInt(decorationDivisor))
	if n.Int64() == 0 {
		return fmt.Sprintf("%.0f%%", v)
	}
	return round1(v)
}

// decorateBP sometimes renders the pressure with its unit suffix.
func decorateBP(v float64) any {
	n, _ := rand.Int(rand.Reader, big.NewInt(decorationDivisor))
	if n.Int64() == 0 {
		return fmt.Sprintf("%.0f mmHg", v)
	}
	return round1(v)
}

// round1 trims a draw to one decimal, matching bedside display precision.
func round1(v float64) float64 {
	return float64(int(v*10)) / 10
}
