package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithRequestScope(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Encoding: "json", Service: "bms", Output: &buf})
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	ctx = ContextWithActor(ctx, "admin@x.com")
	WithRequestID(ctx, log).Info("hello")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "bms", entry["service"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "admin@x.com", entry["actor"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestScopeSettersKeepEachOther(t *testing.T) {
	ctx := ContextWithActor(context.Background(), "a@x.com")
	ctx = ContextWithRequestID(ctx, "req-1")

	assert.Equal(t, "a@x.com", Actor(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestWithRequestIDWithoutScope(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Output: &buf})
	require.NoError(t, err)

	assert.Same(t, log, WithRequestID(context.Background(), log))
	assert.Empty(t, RequestID(context.Background()))
	assert.Empty(t, Actor(context.Background()))
}
