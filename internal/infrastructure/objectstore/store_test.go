package objectstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2026, 4, 30, 18, 5, 9, 0, time.FixedZone("JST", 9*3600))
	assert.Equal(t,
		"reports/day-revenue/2026/04/day-revenue_20260430_20260430T090509.xlsx",
		ReportKey("day-revenue", "20260430", at))
}

func TestNew(t *testing.T) {
	t.Run("disabled without endpoint", func(t *testing.T) {
		a, err := New(Config{Bucket: "reports"})
		require.NoError(t, err)
		assert.IsType(t, Noop{}, a)

		key, err := a.Archive(context.Background(), "k.xlsx", []byte("x"), XLSXContentType)
		require.NoError(t, err)
		assert.Equal(t, "k.xlsx", key)
	})

	t.Run("client for a configured bucket", func(t *testing.T) {
		a, err := New(Config{Endpoint: "http://localhost:9000", Bucket: "reports", AccessKey: "a", SecretKey: "b"})
		require.NoError(t, err)
		c, ok := a.(*Client)
		require.True(t, ok)
		assert.Equal(t, "reports", c.bucket)
		assert.Equal(t, "localhost:9000", c.client.EndpointURL().Host)
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewClient(Config{Endpoint: "localhost:9000"})
		assert.Error(t, err)
	})

	t.Run("empty key is rejected before any request", func(t *testing.T) {
		c, err := NewClient(Config{Endpoint: "localhost:9000", Bucket: "reports"})
		require.NoError(t, err)
		_, err = c.Archive(context.Background(), " / ", nil, "")
		assert.ErrorContains(t, err, "object key is required")
	})
}
