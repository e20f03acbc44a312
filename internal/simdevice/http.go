package simdevice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wardsight/wardsight/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitReadings submits one round of readings concurrently using a worker pool.
func submitReadings(ctx context.Context, config *Config, client *HTTPClient, readings []Reading, stats *Stats) {
	url := config.BaseURL + "/ingest"

	// Counters for statistics
	var (
		accepted int64
		held     int64
		unmapped int64
		failed   int64
	)

	readingChan := make(chan Reading, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for reading := range readingChan {
				select {
				case <-ctx.Done():
					return
				default:
					switch submitSingleReading(ctx, client, url, reading) {
					case "success":
						atomic.AddInt64(&accepted, 1)
					case "unassigned_device":
						atomic.AddInt64(&held, 1)
					case "no_mapping":
						atomic.AddInt64(&unmapped, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(readingChan)
		for _, reading := range readings {
			select {
			case <-ctx.Done():
				return
			case readingChan <- reading:
			}
		}
	}()

	wg.Wait()

	stats.ReadingsSubmitted += len(readings)
	stats.ReadingsAccepted += int(atomic.LoadInt64(&accepted))
	stats.ReadingsHeld += int(atomic.LoadInt64(&held))
	stats.ReadingsUnmapped += int(atomic.LoadInt64(&unmapped))
	stats.ReadingsFailed += int(atomic.LoadInt64(&failed))

	if config.Verbose {
		logger.Get().Info(ctx, "round submitted",
			logger.Int("accepted", int(accepted)),
			logger.Int("held", int(held)),
			logger.Int("unmapped", int(unmapped)),
			logger.Int("failed", int(failed)))
	}
}

// submitSingleReading submits one reading and returns its terminal status.
func submitSingleReading(ctx context.Context, client *HTTPClient, url string, reading Reading) string {
	resp, err := client.Post(ctx, url, reading)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Every routed reading answers 200; the body carries the outcome.
	if resp.StatusCode != StatusOK {
		return "failed"
	}

	var ack IngestResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return "failed"
	}
	return ack.Status
}
