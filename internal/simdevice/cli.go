// Package simdevice streams synthetic bedside monitor readings at a
// running service instance for end-to-end exercise.
package simdevice

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/wardsight/wardsight/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simdevice_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the device simulator.
func ShowHelp() {
	os.Stdout.WriteString(`WardSight Device Simulator
==========================

Streams synthetic bedside monitor readings at a running WardSight
instance: registers a field mapping, assigns one device per patient,
then submits vitals rounds with occasional clinical excursions.

Usage:
  go run cmd/simdevice/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -patients int
        Number of simulated devices/patients (default 16)
  -rounds int
        Number of reading rounds to stream (default 30)
  -interval duration
        Delay between rounds (default 2s)
  -workers int
        Number of concurrent submit workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -device-type string
        Device type reported by the simulated monitors (default "sim-multiparam")
  -log string
        Log file for simulation output (default: simdevice_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate the default ward
  go run cmd/simdevice/main.go

  # A bigger ward on a faster cadence
  go run cmd/simdevice/main.go -patients 40 -interval 500ms -rounds 120

  # Point at a non-default instance with verbose output
  go run cmd/simdevice/main.go -url http://localhost:8080 -verbose
`)
}
