package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "DEBUG", Format: LogFormatJSON, Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithFields(logrus.Fields{"file": "a.csv", "fields": 3}).Info("wrote report")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wrote report", entry["msg"])
	assert.Equal(t, "a.csv", entry["file"])
	assert.EqualValues(t, 3, entry["fields"])
}

func TestNewTextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "warn", Output: &buf})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(&Config{Level: "loud", Format: LogFormatText})
	assert.Error(t, err)
	_, err = New(&Config{Level: "info", Format: "xml"})
	assert.Error(t, err)

	l, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
