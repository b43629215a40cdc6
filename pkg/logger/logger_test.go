package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", &buf)

	log.Info().Msg("dropped")
	log.Warn().Str("store", "note").Msg("request rejected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "note", entry["store"])
	require.Equal(t, "request rejected", entry["message"])
	require.Contains(t, entry, "time")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("loud", "json", &buf)

	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Info().Msg("shown")
	require.NotZero(t, buf.Len())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "console", &buf)

	log.Debug().Msg("hello")
	require.Contains(t, buf.String(), "hello")
}
