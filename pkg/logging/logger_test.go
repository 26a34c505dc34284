package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Str("sheet", "Products").Msg("snapshot fetched")

	out := buf.String()
	assert.Contains(t, out, `"sheet":"Products"`)
	assert.Contains(t, out, `"message":"snapshot fetched"`)
}

func TestSetDefault(t *testing.T) {
	original := Default()
	defer SetDefault(*original)

	var buf bytes.Buffer
	SetDefault(New(&buf))

	Info().Int("inserted", 3).Msg("cycle complete")
	assert.Contains(t, buf.String(), `"inserted":3`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger(t)
	tl.Info().Msg("first")
	tl.Debug().Msg("second")

	assert.Equal(t, 2, tl.Count())
	assert.True(t, tl.Contains("first"))

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}
