package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledLogsJSON(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	tel, err := Init(ctx, Config{LogOutput: &buf, LogLevel: slog.LevelInfo})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(ctx) })

	tel.Logger.DebugContext(ctx, "hidden")
	tel.Logger.InfoContext(ctx, "sweep finished", "promoted", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sweep finished", line["msg"])
	assert.EqualValues(t, 3, line["promoted"])
}

func TestTelemetry_ShutdownIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tel, err := Init(ctx, Config{LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)

	require.NoError(t, tel.Shutdown(ctx))
	assert.NotPanics(t, func() { _ = tel.Shutdown(ctx) })
}

func TestNewResource_SetsServiceName(t *testing.T) {
	res, err := newResource(context.Background(), "todoreminder-test", "1.2.3")
	require.NoError(t, err)
	assert.Contains(t, res.String(), "service.name=todoreminder-test")
	assert.Contains(t, res.String(), "service.version=1.2.3")
}
