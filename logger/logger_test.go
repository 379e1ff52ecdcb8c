package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("输出携带服务标识", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf, "").Info("批次处理完成", "records", 3)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "trackhub-service", entry["service"])
		assert.Equal(t, "批次处理完成", entry["msg"])
		assert.Equal(t, float64(3), entry["records"])
	})

	t.Run("级别过滤", func(t *testing.T) {
		var buf bytes.Buffer
		log := newLogger(&buf, "warn")
		log.Info("被过滤")
		assert.Zero(t, buf.Len())
		log.Warn("保留")
		assert.NotZero(t, buf.Len())
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "INFO", parseLevel("info").String())
	assert.Equal(t, "WARN", parseLevel(" Warn ").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "DEBUG", parseLevel("").String())
	assert.Equal(t, "DEBUG", parseLevel("verbose").String())
}
