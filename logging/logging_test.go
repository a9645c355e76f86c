package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amr/logging"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{"INFO", zerolog.InfoLevel, true},
		{" warn ", zerolog.WarnLevel, true},
		{"disabled", zerolog.Disabled, true},
		{"", zerolog.NoLevel, false},
		{"loud", zerolog.NoLevel, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tc.in)
			if !tc.ok {
				assert.ErrorIs(t, err, logging.ErrBadEnv)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(logging.EnvLevel, "debug")
	t.Setenv(logging.EnvJSON, "true")
	t.Setenv(logging.EnvTimestamp, "0")

	o, err := logging.ApplyEnv(logging.DefaultOptions("amr"))
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, o.Level)
	assert.True(t, o.JSON)
	assert.False(t, o.Timestamp)
	assert.False(t, o.NoColor, "unset variables keep the option")
}

func TestApplyEnv_Errors(t *testing.T) {
	cases := []struct{ name, key, val string }{
		{"Level", logging.EnvLevel, "shout"},
		{"JSON", logging.EnvJSON, "maybe"},
		{"NoColor", logging.EnvNoColor, "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := logging.ApplyEnv(logging.DefaultOptions("amr"))
			assert.ErrorIs(t, err, logging.ErrBadEnv)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	o := logging.DefaultOptions("amrheat")
	o.Out, o.JSON, o.Timestamp = &buf, true, false

	log := logging.New(o)
	log.Debug().Msg("hidden")
	log.Info().Int("step", 3).Msg("hello")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, map[string]any{"level": "info", "app": "amrheat", "step": 3.0, "message": "hello"}, rec)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	o := logging.DefaultOptions("")
	o.Out, o.Level = &buf, zerolog.DebugLevel

	log := logging.New(o)
	log.Debug().Str("field", "Temp").Msg("registered")

	out := buf.String()
	assert.Contains(t, out, "registered")
	assert.Contains(t, out, "field=Temp")
	assert.NotContains(t, out, "\x1b[", "buffers are never colored")
	assert.NotContains(t, out, "app=")
}
