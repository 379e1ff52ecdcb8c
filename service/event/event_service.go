/*
 * @module service/event/event_service
 * @description 导入事件发布服务，将导入任务的生命周期事件写入Kafka供下游订阅
 * @architecture 适配器模式 - 封装kafka-go生产者，提供领域事件接口
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 任务执行 -> 事件构造 -> Kafka发布
 * @rules 事件发布失败只记录日志，不阻断导入任务本身
 * @dependencies github.com/segmentio/kafka-go
 * @refs service/scheduler/scheduler_service.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// 导入事件类型
const (
	EventImportStarted   = "import.started"
	EventImportCompleted = "import.completed"
	EventImportFailed    = "import.failed"
	EventConflictPending = "import.conflict_pending"
)

// ImportEvent 导入生命周期事件
type ImportEvent struct {
	Type       string                 `json:"type"`
	TaskID     string                 `json:"task_id"`
	TaskName   string                 `json:"task_name"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventService 导入事件发布服务
type EventService struct {
	writer  *kafka.Writer
	topic   string
	enabled bool
	mutex   sync.Mutex
}

// NewEventService 创建事件服务
// 未配置 KAFKA_BROKERS 时服务降级为空操作，导入流程不依赖消息队列
func NewEventService() *EventService {
	brokers := os.Getenv("KAFKA_BROKERS")
	topic := os.Getenv("KAFKA_IMPORT_TOPIC")
	if topic == "" {
		topic = "trackhub.import.events"
	}
	if brokers == "" {
		slog.Info("未配置KAFKA_BROKERS，事件发布已停用")
		return &EventService{topic: topic}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	slog.Info("Kafka事件发布已启用", "brokers", brokers, "topic", topic)
	return &EventService{writer: writer, topic: topic, enabled: true}
}

// Publish 发布一条导入事件
func (s *EventService) Publish(ctx context.Context, eventType, taskID, taskName string, payload map[string]interface{}) error {
	if !s.enabled {
		return nil
	}

	event := ImportEvent{
		Type:       eventType,
		TaskID:     taskID,
		TaskName:   taskName,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("事件序列化失败: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(taskID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("事件发布失败: %w", err)
	}
	return nil
}

// PublishAsync 发布事件，失败只记录日志
func (s *EventService) PublishAsync(ctx context.Context, eventType, taskID, taskName string, payload map[string]interface{}) {
	if err := s.Publish(ctx, eventType, taskID, taskName, payload); err != nil {
		slog.Error("导入事件发布失败", "type", eventType, "task_id", taskID, "error", err)
	}
}

// Close 关闭底层生产者
func (s *EventService) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
