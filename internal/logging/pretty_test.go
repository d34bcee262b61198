package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Handle INFO level log", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{NoColor: true})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "saved entity", 0)
		record.AddAttrs(slog.String("type", "task"), slog.Int("count", 42))

		require.NoError(t, handler.Handle(ctx, record))
		output := buf.String()
		assert.Contains(t, output, "INFO:")
		assert.Contains(t, output, "saved entity")
		assert.Contains(t, output, `"count":42`)
		assert.Contains(t, output, `"type":"task"`)
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\.\d{3}\] `, output)
	})

	t.Run("Handle log with no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{NoColor: true})

		require.NoError(t, handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelWarn, "simple", 0)))
		assert.Contains(t, buf.String(), "WARN: simple {}")
	})

	t.Run("Handle error attribute", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{NoColor: true})

		record := slog.NewRecord(time.Now(), slog.LevelError, "load failed", 0)
		record.AddAttrs(slog.Any("error", errors.New("something went wrong")))

		require.NoError(t, handler.Handle(ctx, record))
		assert.Contains(t, buf.String(), `"error":"something went wrong"`)
	})

	t.Run("Colors can be forced on", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NoError(t, handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "colored", 0)))
		assert.Contains(t, buf.String(), "\x1b[")
	})
}

func TestPrettyHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, true)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug, true).With("command", "create").WithGroup("entity")

	logger.Debug("created", "id", "abc")

	assert.Contains(t, buf.String(), `"command":"create"`)
	assert.Contains(t, buf.String(), `"entity.id":"abc"`)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
