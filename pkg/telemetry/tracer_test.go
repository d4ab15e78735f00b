package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "txdecode", "test", "  ")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracerWithEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "txdecode", "test", "localhost:4318")
	require.NoError(t, err)
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "exported")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	// nothing listens on the endpoint, so only make sure shutdown returns
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
