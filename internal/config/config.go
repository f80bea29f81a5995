package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	Detection DetectionConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
}

type AuthConfig struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
}

// DetectionConfig is the full tuning surface of the detection engine. Every
// default is overridable; inconsistent values are fatal at startup so the
// engine never runs with undefined thresholds.
type DetectionConfig struct {
	// Feature extraction
	Window       time.Duration // trailing span fetched per source IP
	StoreTimeout time.Duration // bound on attempt-store reads from the login path

	// Pattern rules
	BruteWindow    time.Duration
	BruteThreshold int
	StuffWindow    time.Duration
	StuffThreshold int

	// Alerting
	Cooldown time.Duration

	// Scheduler
	Interval         time.Duration
	ScanLimit        int
	AggregateScoring bool

	// Risk scoring
	WarnThreshold  int
	BlockThreshold int
	BaseRisk       map[models.Classification]int
	ModelPath      string // empty means the embedded default weights

	// Retention
	AttemptRetention time.Duration
	CleanupInterval  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "sentinel"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		},
		Auth: AuthConfig{
			JWTSecret:         jwtSecret,
			AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		},
		Detection: DetectionConfig{
			Window:           getEnvAsDuration("DETECTION_WINDOW", 120*time.Second),
			StoreTimeout:     getEnvAsDuration("DETECTION_STORE_TIMEOUT", 2*time.Second),
			BruteWindow:      getEnvAsDuration("BRUTE_WINDOW", 120*time.Second),
			BruteThreshold:   getEnvAsInt("BRUTE_THRESHOLD", 5),
			StuffWindow:      getEnvAsDuration("STUFF_WINDOW", 60*time.Second),
			StuffThreshold:   getEnvAsInt("STUFF_THRESHOLD", 4),
			Cooldown:         getEnvAsDuration("ALERT_COOLDOWN", 300*time.Second),
			Interval:         getEnvAsDuration("DETECTION_INTERVAL", 5*time.Second),
			ScanLimit:        getEnvAsInt("DETECTION_SCAN_LIMIT", 1000),
			AggregateScoring: getEnvAsBool("DETECTION_AGGREGATE_SCORING", false),
			WarnThreshold:    getEnvAsInt("ML_WARN_THRESHOLD", 60),
			BlockThreshold:   getEnvAsInt("ML_BLOCK_THRESHOLD", 90),
			BaseRisk: map[models.Classification]int{
				models.ClassNormal:             getEnvAsInt("RISK_BASE_NORMAL", 0),
				models.ClassSuspicious:         getEnvAsInt("RISK_BASE_SUSPICIOUS", 60),
				models.ClassCredentialStuffing: getEnvAsInt("RISK_BASE_CREDENTIAL_STUFFING", 85),
				models.ClassBruteForce:         getEnvAsInt("RISK_BASE_BRUTE_FORCE", 95),
			},
			ModelPath:        getEnv("RISK_MODEL_PATH", ""),
			AttemptRetention: getEnvAsDuration("ATTEMPT_RETENTION", 24*time.Hour),
			CleanupInterval:  getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := cfg.Detection.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects threshold combinations the engine cannot run with.
func (d *DetectionConfig) Validate() error {
	if d.Window <= 0 {
		return fmt.Errorf("DETECTION_WINDOW must be positive")
	}
	if d.StoreTimeout <= 0 {
		return fmt.Errorf("DETECTION_STORE_TIMEOUT must be positive")
	}
	if d.BruteWindow <= 0 || d.StuffWindow <= 0 {
		return fmt.Errorf("pattern windows must be positive")
	}
	if d.BruteThreshold < 1 || d.StuffThreshold < 1 {
		return fmt.Errorf("pattern thresholds must be at least 1")
	}
	if d.Window < d.BruteWindow || d.Window < d.StuffWindow {
		return fmt.Errorf("DETECTION_WINDOW must cover both pattern windows")
	}
	if d.Cooldown <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN must be positive")
	}
	if d.Interval <= 0 {
		return fmt.Errorf("DETECTION_INTERVAL must be positive")
	}
	if d.ScanLimit < 1 {
		return fmt.Errorf("DETECTION_SCAN_LIMIT must be at least 1")
	}
	if d.WarnThreshold < 0 || d.WarnThreshold > 100 {
		return fmt.Errorf("ML_WARN_THRESHOLD must be within 0-100")
	}
	if d.BlockThreshold < 0 || d.BlockThreshold > 100 {
		return fmt.Errorf("ML_BLOCK_THRESHOLD must be within 0-100")
	}
	if d.WarnThreshold >= d.BlockThreshold {
		return fmt.Errorf("ML_WARN_THRESHOLD must be below ML_BLOCK_THRESHOLD")
	}
	for _, class := range []models.Classification{
		models.ClassNormal, models.ClassSuspicious,
		models.ClassCredentialStuffing, models.ClassBruteForce,
	} {
		risk, ok := d.BaseRisk[class]
		if !ok {
			return fmt.Errorf("base risk missing for class %q", class)
		}
		if risk < 0 || risk > 100 {
			return fmt.Errorf("base risk for class %q must be within 0-100", class)
		}
	}
	if d.AttemptRetention < d.Window {
		return fmt.Errorf("ATTEMPT_RETENTION must be at least DETECTION_WINDOW")
	}
	if d.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
