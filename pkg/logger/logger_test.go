package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	log, closer, err := New(Config{Level: "warn", Format: "json"})
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	log, _, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, closer, err := New(Config{Level: "info", Format: "json", Output: path, Service: "bookshop"})
	require.NoError(t, err)

	log.Info().Str("order", "42").Msg("下单成功")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"bookshop"`)
	assert.Contains(t, string(data), `"order":"42"`)
}

func TestFromContext(t *testing.T) {
	var fallbackBuf, reqBuf bytes.Buffer
	fallback := zerolog.New(&fallbackBuf)

	FromContext(context.Background(), fallback).Info().Msg("no request logger")
	assert.Contains(t, fallbackBuf.String(), "no request logger")

	reqLog := zerolog.New(&reqBuf).With().Str("request_id", "r-1").Logger()
	ctx := reqLog.WithContext(context.Background())
	FromContext(ctx, fallback).Info().Msg("with request logger")
	assert.Contains(t, reqBuf.String(), `"request_id":"r-1"`)
	assert.NotContains(t, fallbackBuf.String(), "with request logger")
}
