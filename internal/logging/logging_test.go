package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/matthieukhl/shopstats/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("snapshot loaded", "orders", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "snapshot loaded", entry["msg"])
	assert.Equal(t, float64(3), entry["orders"])
}

func TestNew_TextDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.LogConfig{})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, config.LogConfig{Format: "xml"})
	assert.Error(t, err)
}
