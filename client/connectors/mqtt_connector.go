/*
 * @module client/connectors/mqtt_connector
 * @description MQTT连接器，订阅承运商实时运单状态流并缓冲为可导入批次
 * @architecture 适配器模式 - 封装paho客户端，缓冲消息供调度器批量取走
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 连接建立 -> 订阅主题 -> 消息缓冲 -> 调度器Drain
 * @rules 非法JSON消息丢弃并记录日志；缓冲仅在内存，进程重启即清空
 * @dependencies github.com/eclipse/paho.mqtt.golang
 * @refs service/scheduler/fetchers.go
 */

package connectors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig MQTT连接配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	QoS      byte
}

// ConfigFromEnv 从环境变量读取MQTT配置，未配置Broker时返回nil
func ConfigFromEnv() *MQTTConfig {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return nil
	}
	topic := os.Getenv("MQTT_TRACKING_TOPIC")
	if topic == "" {
		topic = "trackhub/tracking/updates"
	}
	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		hostname, _ := os.Hostname()
		clientID = fmt.Sprintf("trackhub-%s-%d", hostname, os.Getpid())
	}
	return &MQTTConfig{
		Broker:   broker,
		ClientID: clientID,
		Topic:    topic,
		Username: os.Getenv("MQTT_USERNAME"),
		Password: os.Getenv("MQTT_PASSWORD"),
		QoS:      1,
	}
}

// MQTTConnector MQTT实时流连接器
type MQTTConnector struct {
	config *MQTTConfig
	client mqtt.Client
	mutex  sync.Mutex
	buffer []map[string]interface{}
}

// NewMQTTConnector 创建连接器
func NewMQTTConnector(config *MQTTConfig) *MQTTConnector {
	return &MQTTConnector{config: config}
}

// Connect 建立连接并订阅运单状态主题
func (c *MQTTConnector) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.config.Broker).
		SetClientID(c.config.ClientID).
		SetUsername(c.config.Username).
		SetPassword(c.config.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	c.client = mqtt.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT连接失败: %w", token.Error())
	}

	if token := c.client.Subscribe(c.config.Topic, c.config.QoS, c.onMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT订阅失败: %w", token.Error())
	}

	slog.Info("MQTT实时流已订阅", "broker", c.config.Broker, "topic", c.config.Topic)
	return nil
}

// onMessage 消息回调，JSON对象入缓冲
func (c *MQTTConnector) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var record map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &record); err != nil {
		slog.Warn("丢弃非法MQTT消息", "topic", msg.Topic(), "error", err)
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.buffer = append(c.buffer, record)
}

// Drain 取走并清空当前缓冲的全部消息
func (c *MQTTConnector) Drain() []map[string]interface{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	drained := c.buffer
	c.buffer = nil
	return drained
}

// Buffered 当前缓冲消息数
func (c *MQTTConnector) Buffered() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.buffer)
}

// Disconnect 断开连接
func (c *MQTTConnector) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		slog.Info("MQTT连接已断开")
	}
}
