package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Cache.Capacity != 100 || cfg.Cache.TTL != 30*time.Minute || cfg.Cache.SweepInterval != 5*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Distance.Provider != "haversine" {
		t.Errorf("Distance.Provider = %q", cfg.Distance.Provider)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_CAPACITY", "250")
	t.Setenv("CACHE_TTL_MINUTES", "5")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("DISTANCE_PROVIDER", "MATRIX")
	t.Setenv("DISTANCE_API_KEY", "k")
	t.Setenv("DISTANCE_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9090" || cfg.Cache.Capacity != 250 || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DB.Port != 5432 {
		t.Errorf("invalid DB_PORT should fall back, got %d", cfg.DB.Port)
	}
	if cfg.Distance.Provider != "matrix" || cfg.Distance.RequestsPerSecond != 2.5 {
		t.Errorf("Distance = %+v", cfg.Distance)
	}
}

func TestLoad_ScoringWeights(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := ScoringConfig{
		Liked: 0.5, Disliked: 0.3, Filters: 0.3, Quality: 0.1, TopFilters: 5,
		SimilarityTags: 0.4, SimilarityDistance: 0.3, SimilarityRating: 0.2, SimilarityHours: 0.1,
	}
	if cfg.Scoring != want {
		t.Errorf("Scoring = %+v, want %+v", cfg.Scoring, want)
	}

	t.Setenv("SCORER_WEIGHT_QUALITY", "0")
	t.Setenv("SIMILARITY_WEIGHT_HOURS", "0.5")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scoring.Quality != 0 || cfg.Scoring.SimilarityHours != 0.5 {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"zero capacity", map[string]string{"CACHE_CAPACITY": "0"}, "CACHE_CAPACITY"},
		{"unknown provider", map[string]string{"DISTANCE_PROVIDER": "osrm"}, "DISTANCE_PROVIDER"},
		{"matrix without key", map[string]string{"DISTANCE_PROVIDER": "matrix"}, "DISTANCE_API_KEY"},
		{"negative rate limit", map[string]string{"RATE_LIMIT_MAX": "-1"}, "RATE_LIMIT_MAX"},
		{"negative scorer weight", map[string]string{"SCORER_WEIGHT_DISLIKED": "-0.2"}, "SCORER_WEIGHT_DISLIKED"},
		{"all similarity weights zero", map[string]string{
			"SIMILARITY_WEIGHT_TAGS": "0", "SIMILARITY_WEIGHT_DISTANCE": "0",
			"SIMILARITY_WEIGHT_RATING": "0", "SIMILARITY_WEIGHT_HOURS": "0",
		}, "SIMILARITY_WEIGHT_"},
		{"zero top filters", map[string]string{"SCORER_TOP_FILTERS": "0"}, "SCORER_TOP_FILTERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (&Config{LogLevel: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got := d.DSN(); got != "host=db port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
	d.SSLRootCert = "/ca.pem"
	if !strings.HasSuffix(d.DSN(), " sslrootcert=/ca.pem") {
		t.Errorf("DSN() = %q", d.DSN())
	}
}
