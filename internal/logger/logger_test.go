package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "default", level: "", want: zerolog.InfoLevel},
		{name: "override", level: "warn", want: zerolog.WarnLevel},
		{name: "case insensitive", level: " DEBUG ", want: zerolog.DebugLevel},
		{name: "unknown keeps default", level: "chatty", want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newLogger(&bytes.Buffer{}, zerolog.InfoLevel, tt.level)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNewLogger_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, zerolog.InfoLevel, "")

	log.Info().Str("meeting_id", "m-1").Msg("summary email sent")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "meeting-notifier", entry["service"])
	assert.Equal(t, "m-1", entry["meeting_id"])
	assert.Equal(t, "summary email sent", entry["message"])
}

func TestNew_DevelopmentIsDebug(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("development", "").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("production", "").GetLevel())
	assert.Equal(t, zerolog.ErrorLevel, New("production", "error").GetLevel())
}
