package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
)

func TestInitLoggerWithWriter(t *testing.T) {
	previous := log.Logger
	previousLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	var buf bytes.Buffer
	observability.InitLoggerWithWriter(&buf, "orchestrator-test", "production", "warn")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orchestrator-test", entry["service"])
	assert.Equal(t, "kept", entry["message"])
}

func TestLoggerFromContext_RequestID(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	ctx := observability.WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", observability.RequestIDFromContext(ctx))

	observability.LoggerFromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		observability.RecordRequestMetric(ctx, nil, "GET", "/health", 200, time.Millisecond)
		observability.RecordStorageMetric(ctx, nil, "memory", "get", time.Millisecond)
		observability.RecordCacheHit(ctx, nil)
		observability.RecordCacheMiss(ctx, nil)
		observability.RecordDecision(ctx, nil, "DO_NOT_NOTIFY", "DND_ACTIVE")
		observability.RecordPreferenceWrite(ctx, nil, "replaced")
	})
}

func TestInitMetrics_GlobalProvider(t *testing.T) {
	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		observability.RecordRequestMetric(ctx, metrics, "POST", "POST /events", 202, time.Millisecond)
		observability.RecordDecision(ctx, metrics, "PROCESS_NOTIFICATION", "")
	})
}

func TestStartSpan(t *testing.T) {
	ctx, span := observability.StartSpan(context.Background(), "test")
	defer span.End()

	assert.NotNil(t, ctx)
	observability.RecordError(span, nil)
}
