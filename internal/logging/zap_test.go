package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger(&buf, "debug")
	require.NoError(t, err)

	log.With("component", "votes").Info(context.Background(), "vote sent", "note_id", "n-1")

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "vote sent", rec["msg"])
	assert.Equal(t, "votes", rec["component"])
	assert.Equal(t, "n-1", rec["note_id"])
}

func TestZapLogger_EmptyLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger(&buf, "")
	require.NoError(t, err)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_SelectsBackend(t *testing.T) {
	var buf bytes.Buffer

	l, err := New("slog", "info", &buf)
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)

	l, err = New("zap", "info", &buf)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	_, err = New("logrus", "info", &buf)
	require.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	var l Logger = Nop{}
	require.NotPanics(t, func() {
		l.With("a", 1).Error(context.Background(), "x")
	})
}
