package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, logger)
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())
	assert.Nil(t, tp.provider)
}

func TestTracerProvider_DisabledShutdownIsNoop(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, logger)
	require.NoError(t, err)

	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.NoError(t, tp.ForceFlush(context.Background()))
}

func TestTracerProvider_DisabledTracerStillUsable(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, logger)
	require.NoError(t, err)

	tracer := tp.Tracer("test")
	require.NotNil(t, tracer)

	ctx, span := tracer.Start(context.Background(), "noop-span")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()
}

func TestTracerProvider_GetConfig(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     0.5,
		ServiceName:       "vesti-backend",
		Insecure:          true,
	}

	tp, err := NewTracerProvider(context.Background(), cfg, logger)
	require.NoError(t, err)

	got := tp.GetConfig()
	assert.Equal(t, cfg.CollectorEndpoint, got.CollectorEndpoint)
	assert.Equal(t, cfg.SamplingRatio, got.SamplingRatio)
	assert.Equal(t, cfg.ServiceName, got.ServiceName)
	assert.True(t, got.Insecure)
}
