package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"social_network_service/internal/chat/domain"
	"social_network_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 每個連線用戶訂閱自己的 channel，事件由伺服端 fan-out
const (
	// UserChannelPrefix per-user realtime channel
	UserChannelPrefix = "chat:user:"
	// ChatChannelPrefix per-chat realtime channel（typing 等短暫事件）
	ChatChannelPrefix = "chat:room:"
)

// EventPublisher 發布 realtime 事件
type EventPublisher interface {
	Publish(channel string, ev domain.RealtimeEvent) error
}

// EventSubscriber 訂閱 realtime 事件
type EventSubscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(ev domain.RealtimeEvent)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish 將事件序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(channel string, ev domain.RealtimeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱 channel，收到事件後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(ev domain.RealtimeEvent)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var ev domain.RealtimeEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					logger.Log.Error("pubsub err :", zap.String("err", fmt.Sprintf("failed to unmarshal event: %v", err)))
					continue
				}
				handler(ev)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				// 當 ctx 被取消時，退出循環並關閉訂閱
				sub.Close()
				return
			}
		}
	}()
	return nil
}
