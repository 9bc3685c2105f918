package tracer

import (
	"context"
	"testing"

	"pazuzu-registry/internal/config"
	"pazuzu-registry/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitTracer_Disabled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	shutdown := InitTracer(config.TracingConfig{Enabled: false}, logger.NewWithCore(core))
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	entries := logs.FilterField(zap.String("module", "TRACER")).All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "disabled")
}

func TestInitTracer_Enabled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	// The exporter connects lazily, so no collector is needed.
	shutdown := InitTracer(config.TracingConfig{Enabled: true, Endpoint: "localhost:4318"}, logger.NewWithCore(core))
	require.NotNil(t, shutdown)
	assert.Equal(t, 1, logs.FilterMessage("OpenTelemetry tracer initialized").Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
