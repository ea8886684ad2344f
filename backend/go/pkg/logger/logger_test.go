package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	Init(logrus.DebugLevel, &buf)
	t.Cleanup(func() { Init(logrus.InfoLevel, nil) })

	base := New("debt-cli", "trace-1")
	base.WithPayload(map[string]interface{}{"rows": 3}).WithError(errors.New("boom")).Debug("query done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "query done", line["message"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "debt-cli", line["service_name"])
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "timestamp")
	assert.Contains(t, line, "payload")

	// Derived loggers must not leak fields back into the base logger.
	buf.Reset()
	base.Info("plain")
	line = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "payload")
	assert.NotContains(t, line, "error")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}
