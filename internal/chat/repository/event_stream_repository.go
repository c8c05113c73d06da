package repository

import (
	"context"
	"encoding/json"

	"social_network_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventStream - chat 事件流，追加到 kafka 供稽核/下游分析
type EventStream interface {
	Append(ctx context.Context, key string, ev domain.RealtimeEvent) error
}

type kafkaEventStream struct {
	writer *kafka.Writer
}

// NewKafkaEventStream create EventStream on an established writer
func NewKafkaEventStream(writer *kafka.Writer) EventStream {
	return &kafkaEventStream{writer: writer}
}

// Append 序列化事件後寫入 topic，key 以 chat id 分區維持單一 chat 的順序
func (s *kafkaEventStream) Append(ctx context.Context, key string, ev domain.RealtimeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
}
