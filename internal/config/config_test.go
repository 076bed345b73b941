package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/id"
)

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":                   "postgres://localhost/venuedesk",
		"JWT_SECRET":                     "secret",
		"FIXED_SERVICE_BASIC_FEE_ID":     "01900000-0000-7000-8000-000000000001",
		"FIXED_SERVICE_EXTENSION_FEE_ID": "01900000-0000-7000-8000-000000000002",
		"FIXED_SERVICE_ALL_DAY_FEE_ID":   "01900000-0000-7000-8000-000000000003",
		"FIXED_SERVICE_INCURRED_FEE_ID":  "01900000-0000-7000-8000-000000000004",
		"FIXED_SERVICE_CANCEL_FEE_ID":    "01900000-0000-7000-8000-000000000005",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(fakeEnv(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 20, cfg.DBMaxConns)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 336*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, "10", cfg.TaxRate.String())
	assert.Equal(t, "venuedesk.events", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Empty(t, cfg.CORSOrigins)
	assert.True(t, id.IsNil(cfg.RoomSet.SetID))
	assert.Equal(t, id.MustParse("01900000-0000-7000-8000-000000000005"), cfg.FixedServices.CancelFee)
}

func TestLoad_RoomSetAndBrokers(t *testing.T) {
	values := baseEnv()
	values["ROOM_SET_ID"] = "01900000-0000-7000-8000-0000000000aa"
	values["ROOM_IN_SET_IDS"] = "01900000-0000-7000-8000-0000000000ab, 01900000-0000-7000-8000-0000000000ac"
	values["KAFKA_BROKERS"] = "k1:9092,k2:9092"
	values["CORS_ALLOWED_ORIGINS"] = "https://desk.example.jp"

	cfg, err := Load(fakeEnv(values))
	require.NoError(t, err)

	assert.Len(t, cfg.RoomSet.SubIDs, 2)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"https://desk.example.jp"}, cfg.CORSOrigins)
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	values := baseEnv()
	delete(values, "JWT_SECRET")
	values["DB_MAX_CONNS"] = "many"
	values["FIXED_SERVICE_CANCEL_FEE_ID"] = "not-a-uuid"

	_, err := Load(fakeEnv(values))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET: required")
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")
	assert.Contains(t, err.Error(), "FIXED_SERVICE_CANCEL_FEE_ID")
}
