package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithOutput(t *testing.T) {
	t.Run("json format and level from env", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("LOG_FORMAT", "JSON")

		var buf bytes.Buffer
		InitWithOutput(&buf)

		assert.Equal(t, logrus.WarnLevel, Log.GetLevel())

		Log.Info("dropped")
		WithComponent("service").Warn("kept")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "service", entry["component"])
	})

	t.Run("bad level falls back to info", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		t.Setenv("LOG_FORMAT", "")

		var buf bytes.Buffer
		InitWithOutput(&buf)

		assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
		Log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
