package distance

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"center-directory-service/internal/models"
)

func ptr(v float64) *float64 { return &v }

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Distances(context.Context, Point, []Point) ([]Result, error) {
	return nil, errors.New("upstream down")
}

func TestResolve(t *testing.T) {
	origin := Point{Lat: 41.8781, Lng: -87.6298}
	centers := []models.Center{
		{ID: 1, Latitude: ptr(41.8781), Longitude: ptr(-87.6298)},
		{ID: 2, Latitude: ptr(0), Longitude: ptr(0)},
		{ID: 3},
		{ID: 4, Latitude: ptr(42.8781), Longitude: ptr(-87.6298)},
	}

	tests := []struct {
		name     string
		provider Provider
		verify   func(t *testing.T, got map[int]*float64)
	}{
		{
			name:     "haversine skips invalid coordinates",
			provider: HaversineProvider{},
			verify: func(t *testing.T, got map[int]*float64) {
				if len(got) != 2 {
					t.Fatalf("len = %d, want 2 (%v)", len(got), got)
				}
				if got[1] == nil || *got[1] != 0 {
					t.Errorf("distance to same point = %v, want 0", got[1])
				}
				if got[4] == nil || math.Abs(*got[4]-69.1) > 0.1 {
					t.Errorf("distance one degree north = %v, want ~69.1", got[4])
				}
				if _, ok := got[2]; ok {
					t.Error("zero coordinate should be excluded")
				}
			},
		},
		{
			name:     "provider failure leaves all distances unknown",
			provider: failingProvider{},
			verify: func(t *testing.T, got map[int]*float64) {
				if len(got) != 0 {
					t.Errorf("expected empty map, got %v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, Resolve(context.Background(), tt.provider, origin, centers))
		})
	}
}

const okBody = `{
  "status": "OK",
  "rows": [{"elements": [
    {"status": "OK", "distance": {"text": "1.0 mi", "value": 1609.344}, "duration": {"text": "4 mins", "value": 240}},
    {"status": "ZERO_RESULTS"}
  ]}]
}`

func TestMatrixClient_Distances(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/distancematrix/json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := NewMatrixClient(MatrixConfig{APIKey: "secret", BaseURL: srv.URL})
	res, err := c.Distances(context.Background(), Point{Lat: 1, Lng: 2}, []Point{{Lat: 3, Lng: 4}, {Lat: 5, Lng: 6}})
	if err != nil {
		t.Fatalf("Distances() error = %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("len = %d, want 2", len(res))
	}
	if res[0].Miles == nil || math.Abs(*res[0].Miles-1) > 1e-9 {
		t.Errorf("res[0].Miles = %v, want 1", res[0].Miles)
	}
	if res[0].Duration != "4 mins" {
		t.Errorf("res[0].Duration = %q", res[0].Duration)
	}
	if res[1].Miles != nil {
		t.Errorf("non-OK element should have nil distance, got %v", *res[1].Miles)
	}
	if !strings.Contains(gotQuery, "key=secret") || !strings.Contains(gotQuery, "units=imperial") {
		t.Errorf("query = %s", gotQuery)
	}
}

func TestMatrixClient_Batches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		n := len(strings.Split(r.URL.Query().Get("destinations"), "|"))
		var sb strings.Builder
		sb.WriteString(`{"status":"OK","rows":[{"elements":[`)
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`{"status":"OK","distance":{"value":3218.688}}`)
		}
		sb.WriteString(`]}]}`)
		_, _ = w.Write([]byte(sb.String()))
	}))
	defer srv.Close()

	dests := make([]Point, 60)
	for i := range dests {
		dests[i] = Point{Lat: 41, Lng: -87}
	}

	c := NewMatrixClient(MatrixConfig{BaseURL: srv.URL})
	res, err := c.Distances(context.Background(), Point{Lat: 41, Lng: -87}, dests)
	if err != nil {
		t.Fatalf("Distances() error = %v", err)
	}
	if len(res) != 60 {
		t.Fatalf("len = %d, want 60", len(res))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	for i, r := range res {
		if r.Miles == nil || math.Abs(*r.Miles-2) > 1e-9 {
			t.Fatalf("res[%d] = %v, want 2 miles", i, r.Miles)
		}
	}
}

func TestMatrixClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http error", http.StatusInternalServerError, "boom", nil},
		{"non-OK status", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, ErrProviderStatus},
		{"bad json", http.StatusOK, `{`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewMatrixClient(MatrixConfig{BaseURL: srv.URL})
			_, err := c.Distances(context.Background(), Point{}, []Point{{Lat: 1, Lng: 1}})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatrixClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewMatrixClient(MatrixConfig{BaseURL: srv.URL})
	for i := 0; i < 8; i++ {
		_, _ = c.Distances(context.Background(), Point{}, []Point{{Lat: 1, Lng: 1}})
	}
	if calls.Load() != 5 {
		t.Errorf("upstream calls = %d, want 5 before the breaker opens", calls.Load())
	}
}
