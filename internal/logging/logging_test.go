package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	logger := NewLoggerWithConfig(LogConfig{
		Level:    "debug",
		File:     true,
		FilePath: path,
		MaxSize:  1,
	})
	logger.Info().Str("k", "v").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k":"v"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	l := FromContext(ctx)
	l.Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	// missing logger falls back to a no-op
	l = FromContext(context.Background())
	l.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

func TestFieldHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	l := WithUser(logger, "alice")
	l.Info().Msg("user")
	l = WithStrategy(l, "s1")
	l.Warn().Msg("strategy")
	l = WithOperation(l, "recompute")
	l.Info().Msg("op")

	out := buf.String()
	assert.Contains(t, out, `"user_id":"alice","message":"user"`)
	assert.Contains(t, out, `"user_id":"alice","strategy_id":"s1","message":"strategy"`)
	assert.Contains(t, out, `"operation":"recompute"`)
}

func TestLogRollupLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	LogRollup(logger, "s1", 3, 10, time.Millisecond, nil)
	assert.Empty(t, buf.String(), "successful refresh logs at debug")

	LogRollup(logger, "s1", 0, 0, time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"strategy_id":"s1"`)
}
