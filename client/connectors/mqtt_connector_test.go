/*
 * @module client/connectors/mqtt_connector_test
 * @description MQTT连接器测试
 * @architecture 单元测试 - 验证消息缓冲与取走语义
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 消息注入 -> 缓冲计数 -> Drain清空
 * @rules 非法JSON消息不得进入缓冲
 * @dependencies testing
 * @refs mqtt_connector.go
 */

package connectors

import (
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessage 测试用MQTT消息
type fakeMessage struct {
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return "trackhub/tracking/updates" }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

var _ mqtt.Message = (*fakeMessage)(nil)

func TestMQTTBuffer(t *testing.T) {
	c := NewMQTTConnector(&MQTTConfig{Topic: "trackhub/tracking/updates"})

	t.Run("JSON消息入缓冲", func(t *testing.T) {
		c.onMessage(nil, &fakeMessage{payload: []byte(`{"codigo":"JD123456785BR","status":"shipped"}`)})
		c.onMessage(nil, &fakeMessage{payload: []byte(`{"codigo":"OT453124780BR"}`)})
		assert.Equal(t, 2, c.Buffered())
	})

	t.Run("非法JSON丢弃", func(t *testing.T) {
		c.onMessage(nil, &fakeMessage{payload: []byte(`not-json`)})
		assert.Equal(t, 2, c.Buffered())
	})

	t.Run("Drain取走并清空", func(t *testing.T) {
		drained := c.Drain()
		require.Len(t, drained, 2)
		assert.Equal(t, "JD123456785BR", drained[0]["codigo"])
		assert.Equal(t, 0, c.Buffered())
		assert.Empty(t, c.Drain())
	})
}
