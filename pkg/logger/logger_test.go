package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "venuedesk/internal/core/context"
	"venuedesk/internal/core/id"
)

func TestLoggerWritesContextFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	staffID := id.New()
	ctx := appctx.WithTrace(context.Background(), appctx.NewTraceContext("trace-1", "req-1"))
	ctx = appctx.WithStaff(ctx, &appctx.StaffContext{StaffID: staffID})
	ctx = WithLogger(ctx, l)

	Info(ctx, "invoice created", "voucher_num", "INV-2026-00001")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"invoice created"`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, staffID.String())
	assert.Contains(t, out, "INV-2026-00001")
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l, err := New(Config{Level: "nonsense", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Debugw("hidden")
	l.Infow("shown")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "log.json")
	l, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)
	assert.NotSame(t, l, Default(), "New leaves the default alone")

	SetDefault(l)
	require.Same(t, l, Default())

	Info(context.Background(), "booking created")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"booking created"`)
}
