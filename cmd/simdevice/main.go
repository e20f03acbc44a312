package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/wardsight/wardsight/internal/simdevice"
)

// Default configuration constants.
const (
	defaultPatients   = 16
	defaultRounds     = 30
	defaultInterval   = 2 * time.Second
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		patients   = flag.Int("patients", defaultPatients, "Number of simulated devices/patients")
		rounds     = flag.Int("rounds", defaultRounds, "Number of reading rounds to stream")
		interval   = flag.Duration("interval", defaultInterval, "Delay between rounds")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submit workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		deviceType = flag.String("device-type", "sim-multiparam", "Device type reported by the simulated monitors")
		logFile    = flag.String("log", "", "Log file for simulation output (default: simdevice_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simdevice.ShowHelp()
		return
	}

	// Setup logging
	if err := simdevice.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create simulation configuration
	config := &simdevice.Config{
		BaseURL:    *baseURL,
		Patients:   *patients,
		Rounds:     *rounds,
		Interval:   *interval,
		Workers:    *workers,
		Timeout:    *timeout,
		DeviceType: *deviceType,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the simulation
	if err := simdevice.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
