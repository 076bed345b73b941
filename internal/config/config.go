// Package config resolves the process configuration from the environment.
// It is read once in main and injected; nothing reads it globally.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/room"
)

// Config is the full runtime configuration.
type Config struct {
	ServerAddr string
	// CORSOrigins lists the front-office origins. Empty disables CORS.
	CORSOrigins []string

	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	LogLevel       string
	LogDevelopment bool

	Location *time.Location
	TaxRate  decimal.Decimal

	RoomSet       room.RoomSet
	FixedServices catalog.FixedServiceIDs

	Kafka  KafkaConfig
	Outbox OutboxConfig
	S3     S3Config
}

// KafkaConfig configures the outbox relay target. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether a broker list is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// OutboxConfig tunes the relay loop of the worker.
type OutboxConfig struct {
	BatchSize int
	Interval  time.Duration
}

// S3Config configures report archiving. Empty Endpoint disables it.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an endpoint is configured.
func (s S3Config) Enabled() bool { return s.Endpoint != "" }

// Load reads the configuration through getenv (os.Getenv in production).
func Load(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		ServerAddr:     e.str("SERVER_ADDR", ":8080"),
		CORSOrigins:    e.list("CORS_ALLOWED_ORIGINS"),
		DatabaseURL:    e.required("DATABASE_URL"),
		DBMaxConns:     e.int("DB_MAX_CONNS", 20),
		DBMinConns:     e.int("DB_MIN_CONNS", 2),
		JWTSecret:      e.required("JWT_SECRET"),
		JWTAccessTTL:   e.duration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL:  e.duration("JWT_REFRESH_TTL", 14*24*time.Hour),
		LogLevel:       e.str("LOG_LEVEL", "info"),
		LogDevelopment: e.bool("LOG_DEVELOPMENT", false),
		TaxRate:        e.decimal("TAX_RATE", decimal.NewFromInt(10)),
		Kafka: KafkaConfig{
			Brokers: e.list("KAFKA_BROKERS"),
			Topic:   e.str("KAFKA_TOPIC", "venuedesk.events"),
		},
		Outbox: OutboxConfig{
			BatchSize: e.int("OUTBOX_BATCH_SIZE", 100),
			Interval:  e.duration("OUTBOX_INTERVAL", 500*time.Millisecond),
		},
		S3: S3Config{
			Endpoint:  e.str("S3_ENDPOINT", ""),
			AccessKey: e.str("S3_ACCESS_KEY", ""),
			SecretKey: e.str("S3_SECRET_KEY", ""),
			Bucket:    e.str("S3_BUCKET", "venuedesk-reports"),
			UseSSL:    e.bool("S3_USE_SSL", false),
		},
	}

	tz := e.str("TIMEZONE", "Asia/Tokyo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.fail("TIMEZONE", err)
	}
	cfg.Location = loc

	cfg.RoomSet = room.RoomSet{
		SetID:  e.optionalID("ROOM_SET_ID"),
		SubIDs: e.ids("ROOM_IN_SET_IDS"),
	}
	cfg.FixedServices = catalog.FixedServiceIDs{
		BasicFee:     e.requiredID("FIXED_SERVICE_BASIC_FEE_ID"),
		ExtensionFee: e.requiredID("FIXED_SERVICE_EXTENSION_FEE_ID"),
		AllDayFee:    e.requiredID("FIXED_SERVICE_ALL_DAY_FEE_ID"),
		IncurredFee:  e.requiredID("FIXED_SERVICE_INCURRED_FEE_ID"),
		CancelFee:    e.requiredID("FIXED_SERVICE_CANCEL_FEE_ID"),
	}

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(e.errs, "; "))
	}
	return cfg, nil
}

// env collects every problem instead of stopping at the first one.
type env struct {
	getenv func(string) string
	errs   []string
}

func (e *env) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Sprintf("%s: %v", key, err))
}

func (e *env) str(key, defaultValue string) string {
	if value := strings.TrimSpace(e.getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e *env) required(key string) string {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		e.errs = append(e.errs, key+": required")
	}
	return value
}

func (e *env) int(key string, defaultValue int) int {
	value := e.getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return n
}

func (e *env) bool(key string, defaultValue bool) bool {
	value := e.getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return b
}

func (e *env) duration(key string, defaultValue time.Duration) time.Duration {
	value := e.getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return d
}

func (e *env) decimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := e.getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		e.fail(key, err)
		return defaultValue
	}
	return d
}

func (e *env) list(key string) []string {
	var out []string
	for _, part := range strings.Split(e.getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e *env) optionalID(key string) id.ID {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		return id.Nil()
	}
	parsed, err := id.Parse(value)
	if err != nil {
		e.fail(key, err)
	}
	return parsed
}

func (e *env) requiredID(key string) id.ID {
	value := e.required(key)
	if value == "" {
		return id.Nil()
	}
	parsed, err := id.Parse(value)
	if err != nil {
		e.fail(key, err)
	}
	return parsed
}

func (e *env) ids(key string) []id.ID {
	parsed, err := id.ParseList(e.getenv(key))
	if err != nil {
		e.fail(key, err)
	}
	return parsed
}
