package simdevice

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wardsight/wardsight/pkg/logger"
)

// simulatedFields maps the simulated monitor's payload fields to the
// canonical vocabulary the service scores on.
var simulatedFields = map[string]string{
	"HeartRate": "hr_mean",
	"RespRate":  "rr_mean",
	"SpO2":      "spo2_mean",
	"Systolic":  "sbp_mean",
	"Diastolic": "dbp_mean",
}

// Run provisions the service and streams simulated device readings.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting device simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("patients", config.Patients),
		logger.Int("rounds", config.Rounds),
		logger.String("interval", config.Interval.String()),
		logger.Int("workers", config.Workers),
		logger.String("deviceType", config.DeviceType),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Register the simulated monitor's field mapping
	if err := createMapping(ctx, config, client); err != nil {
		return fmt.Errorf("mapping registration failed: %w", err)
	}

	// Step 3: Assign one device per patient
	deviceIDs, err := createAssignments(ctx, config, client)
	if err != nil {
		return fmt.Errorf("device assignment failed: %w", err)
	}

	// Step 4: Stream reading rounds
	if err := streamReadings(ctx, config, client, deviceIDs, stats); err != nil {
		return fmt.Errorf("reading stream failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// createMapping registers the simulated monitor field mapping.
func createMapping(ctx context.Context, config *Config, client *HTTPClient) error {
	req := MappingRequest{
		Name:       "Simulated multiparameter monitor",
		DeviceType: config.DeviceType,
		Fields:     simulatedFields,
	}

	resp, err := client.Post(ctx, config.BaseURL+"/mappings", req)
	if err != nil {
		return fmt.Errorf("failed to create mapping: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read mapping response: %w", err)
	}
	if resp.StatusCode != StatusCreated {
		return fmt.Errorf("mapping creation failed with status %d: %s", resp.StatusCode, string(body))
	}

	var created MappingResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("failed to parse mapping response: %w", err)
	}

	logger.Get().Info(ctx, "mapping registered",
		logger.String("mappingID", created.ID),
		logger.String("deviceType", created.DeviceType))
	return nil
}

// createAssignments pairs one simulated device with each patient and
// returns the device IDs to stream from. A duplicate answer means the
// pairing survived a previous run, which is fine for streaming.
func createAssignments(ctx context.Context, config *Config, client *HTTPClient) ([]string, error) {
	deviceIDs := make([]string, 0, config.Patients)

	for i := 0; i < config.Patients; i++ {
		patientID := strconv.Itoa(i + 1)
		deviceID := fmt.Sprintf("sim-bed-%03d", i+1)

		req := AssignmentRequest{
			DeviceID:  deviceID,
			PatientID: patientID,
		}

		resp, err := client.Post(ctx, config.BaseURL+"/assignments", req)
		if err != nil {
			return nil, fmt.Errorf("failed to assign device %s: %w", deviceID, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to read assignment response: %w", err)
		}
		if resp.StatusCode != StatusCreated && resp.StatusCode != 409 {
			return nil, fmt.Errorf("assignment of %s failed with status %d: %s", deviceID, resp.StatusCode, string(body))
		}

		deviceIDs = append(deviceIDs, deviceID)
	}

	logger.Get().Info(ctx, "devices assigned", logger.Int("count", len(deviceIDs)))
	return deviceIDs, nil
}

// streamReadings generates and submits rounds of readings until the
// round budget is spent or the context is cancelled.
func streamReadings(ctx context.Context, config *Config, client *HTTPClient, deviceIDs []string, stats *Stats) error {
	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	for round := 0; round < config.Rounds; round++ {
		readings := make([]Reading, len(deviceIDs))
		for i, deviceID := range deviceIDs {
			readings[i] = generateReading(deviceID, config.DeviceType)
		}
		stats.ReadingsGenerated += len(readings)

		submitReadings(ctx, config, client, readings, stats)

		if round == config.Rounds-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during streaming: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	logger.Get().Info(ctx, "streaming finished",
		logger.Int("rounds", config.Rounds),
		logger.Int("readings", stats.ReadingsSubmitted))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, readingsPerSecond float64

	if stats.ReadingsSubmitted > 0 {
		acceptRate = float64(stats.ReadingsAccepted) / float64(stats.ReadingsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		readingsPerSecond = float64(stats.ReadingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("readingsGenerated", stats.ReadingsGenerated),
		logger.Int("readingsSubmitted", stats.ReadingsSubmitted),
		logger.Int("readingsAccepted", stats.ReadingsAccepted),
		logger.Int("readingsHeld", stats.ReadingsHeld),
		logger.Int("readingsUnmapped", stats.ReadingsUnmapped),
		logger.Int("readingsFailed", stats.ReadingsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("readingsPerSecond", readingsPerSecond))
}
