package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"center-directory-service/internal/metrics"
)

const (
	// MaxDestinationsPerRequest is the Distance Matrix per-request element cap.
	MaxDestinationsPerRequest = 25
	metersPerMile             = 1609.344
	breakerName               = "distance-matrix"
)

// ErrProviderStatus is returned when the API answers with a non-OK top-level status.
var ErrProviderStatus = errors.New("distance matrix returned non-OK status")

// MatrixConfig configures a MatrixClient.
type MatrixConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls; 0 means unlimited.
	RequestsPerSecond float64
}

// MatrixClient talks to a Google Distance Matrix compatible API.
type MatrixClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]Result]
}

// ---- Distance Matrix response types ----

type matrixResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Rows         []matrixRow `json:"rows"`
}

type matrixRow struct {
	Elements []matrixElement `json:"elements"`
}

type matrixElement struct {
	Status   string     `json:"status"`
	Distance *textValue `json:"distance"`
	Duration *textValue `json:"duration"`
}

type textValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// NewMatrixClient creates a Distance Matrix client guarded by a circuit breaker
// and an outbound rate limiter.
func NewMatrixClient(cfg MatrixConfig) *MatrixClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Result](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &MatrixClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		cb:      cb,
	}
}

func (c *MatrixClient) Name() string { return "matrix" }

// Distances queries the API in batches of MaxDestinationsPerRequest. Any failed
// batch fails the whole call.
func (c *MatrixClient) Distances(ctx context.Context, origin Point, destinations []Point) ([]Result, error) {
	out := make([]Result, 0, len(destinations))
	for start := 0; start < len(destinations); start += MaxDestinationsPerRequest {
		end := min(start+MaxDestinationsPerRequest, len(destinations))
		batch, err := c.batch(ctx, origin, destinations[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (c *MatrixClient) batch(ctx context.Context, origin Point, destinations []Point) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("distance rate limiter: %w", err)
	}

	started := time.Now()
	results, err := c.cb.Execute(func() ([]Result, error) {
		return c.fetch(ctx, origin, destinations)
	})
	metrics.DistanceRequestDuration.Observe(time.Since(started).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.DistanceRequests.WithLabelValues(c.Name(), "rejected").Inc()
		return nil, fmt.Errorf("distance matrix unavailable: %w", err)
	case err != nil:
		metrics.DistanceRequests.WithLabelValues(c.Name(), "failure").Inc()
		return nil, err
	}
	metrics.DistanceRequests.WithLabelValues(c.Name(), "success").Inc()
	return results, nil
}

func (c *MatrixClient) fetch(ctx context.Context, origin Point, destinations []Point) ([]Result, error) {
	dests := make([]string, len(destinations))
	for i, d := range destinations {
		dests[i] = formatPoint(d)
	}

	q := url.Values{}
	q.Set("origins", formatPoint(origin))
	q.Set("destinations", strings.Join(dests, "|"))
	q.Set("units", "imperial")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/distancematrix/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build distance request: %w", err)
	}

	slog.Debug("fetching distance matrix", "destinations", len(destinations))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("distance matrix returned status %d: %s", resp.StatusCode, string(body))
	}

	var result matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}
	if result.Status != "OK" {
		return nil, fmt.Errorf("%w: %s %s", ErrProviderStatus, result.Status, result.ErrorMessage)
	}

	out := make([]Result, len(destinations))
	if len(result.Rows) == 0 {
		return out, nil
	}
	for i, el := range result.Rows[0].Elements {
		if i >= len(out) {
			break
		}
		if el.Status != "OK" || el.Distance == nil {
			continue
		}
		miles := el.Distance.Value / metersPerMile
		out[i].Miles = &miles
		if el.Duration != nil {
			out[i].Duration = el.Duration.Text
		}
	}
	return out, nil
}

func formatPoint(p Point) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
