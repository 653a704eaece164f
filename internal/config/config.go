package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB        DBConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Distance  DistanceConfig
	RateLimit RateLimitConfig
	Scoring   ScoringConfig
	Port      string
	LogLevel  string
	// RecommendationLimitMax caps the limit query parameter.
	RecommendationLimitMax int
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	Capacity      int
	TTL           time.Duration
	SweepInterval time.Duration
}

type DistanceConfig struct {
	// Provider is "haversine" or "matrix".
	Provider          string
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// ScoringConfig holds the default recommendation weights. Active rows in
// recommendation_rules override the personal weights per request.
type ScoringConfig struct {
	Liked      float64
	Disliked   float64
	Filters    float64
	Quality    float64
	TopFilters int

	SimilarityTags     float64
	SimilarityDistance float64
	SimilarityRating   float64
	SimilarityHours    float64
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "center_directory"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Capacity:      getEnvInt("CACHE_CAPACITY", 100),
			TTL:           time.Duration(getEnvInt("CACHE_TTL_MINUTES", 30)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("CACHE_SWEEP_MINUTES", 5)) * time.Minute,
		},
		Distance: DistanceConfig{
			Provider:          strings.ToLower(getEnv("DISTANCE_PROVIDER", "haversine")),
			APIKey:            getEnv("DISTANCE_API_KEY", ""),
			BaseURL:           getEnv("DISTANCE_BASE_URL", "https://maps.googleapis.com/maps/api"),
			RequestsPerSecond: getEnvFloat("DISTANCE_RPS", 10),
			Timeout:           time.Duration(getEnvInt("DISTANCE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvInt("RATE_LIMIT_MAX", 120),
			Window: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		Scoring: ScoringConfig{
			Liked:              getEnvFloat("SCORER_WEIGHT_LIKED", 0.5),
			Disliked:           getEnvFloat("SCORER_WEIGHT_DISLIKED", 0.3),
			Filters:            getEnvFloat("SCORER_WEIGHT_FILTERS", 0.3),
			Quality:            getEnvFloat("SCORER_WEIGHT_QUALITY", 0.1),
			TopFilters:         getEnvInt("SCORER_TOP_FILTERS", 5),
			SimilarityTags:     getEnvFloat("SIMILARITY_WEIGHT_TAGS", 0.4),
			SimilarityDistance: getEnvFloat("SIMILARITY_WEIGHT_DISTANCE", 0.3),
			SimilarityRating:   getEnvFloat("SIMILARITY_WEIGHT_RATING", 0.2),
			SimilarityHours:    getEnvFloat("SIMILARITY_WEIGHT_HOURS", 0.1),
		},
		Port:                   getEnv("SERVER_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		RecommendationLimitMax: getEnvInt("RECOMMENDATION_LIMIT_MAX", 50),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Cache.Capacity <= 0 {
		errs = append(errs, errors.New("CACHE_CAPACITY must be positive"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL_MINUTES must be positive"))
	}
	switch c.Distance.Provider {
	case "haversine":
	case "matrix":
		if c.Distance.APIKey == "" {
			errs = append(errs, errors.New("DISTANCE_API_KEY is required for the matrix provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("DISTANCE_PROVIDER %q is not one of haversine, matrix", c.Distance.Provider))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS must be positive"))
	}
	errs = append(errs, c.Scoring.validate()...)
	if c.RecommendationLimitMax <= 0 {
		errs = append(errs, errors.New("RECOMMENDATION_LIMIT_MAX must be positive"))
	}
	return errors.Join(errs...)
}

func (s ScoringConfig) validate() []error {
	var errs []error
	for name, w := range map[string]float64{
		"SCORER_WEIGHT_LIKED":        s.Liked,
		"SCORER_WEIGHT_DISLIKED":     s.Disliked,
		"SCORER_WEIGHT_FILTERS":      s.Filters,
		"SCORER_WEIGHT_QUALITY":      s.Quality,
		"SIMILARITY_WEIGHT_TAGS":     s.SimilarityTags,
		"SIMILARITY_WEIGHT_DISTANCE": s.SimilarityDistance,
		"SIMILARITY_WEIGHT_RATING":   s.SimilarityRating,
		"SIMILARITY_WEIGHT_HOURS":    s.SimilarityHours,
	} {
		if w < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if s.SimilarityTags+s.SimilarityDistance+s.SimilarityRating+s.SimilarityHours <= 0 {
		errs = append(errs, errors.New("SIMILARITY_WEIGHT_* must not all be zero"))
	}
	if s.TopFilters <= 0 {
		errs = append(errs, errors.New("SCORER_TOP_FILTERS must be positive"))
	}
	return errs
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}
