package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TypingIdleTimeout typing 狀態無新按鍵後的存活時間
const TypingIdleTimeout = 3 * time.Second

// TypingRepository - typing 指示狀態，靠 redis TTL 自動過期
type TypingRepository interface {
	// StartTyping 回傳 true 表示這個 quiet period 內第一次觸發，需要廣播
	StartTyping(ctx context.Context, chatID, userID, displayName string) (bool, error)
	// RefreshTyping 按鍵持續時延長 TTL，不重複廣播
	RefreshTyping(ctx context.Context, chatID, userID string) error
	StopTyping(ctx context.Context, chatID, userID string) error
	ActiveTypers(ctx context.Context, chatID string) (map[string]string, error)
}

type redisTypingRepository struct {
	client *redis.Client
}

// NewRedisTypingRepository create TypingRepository
func NewRedisTypingRepository(client *redis.Client) TypingRepository {
	return &redisTypingRepository{client: client}
}

func typingKey(chatID, userID string) string {
	return fmt.Sprintf("chat:typing:%s:%s", chatID, userID)
}

func typingPattern(chatID string) string {
	return fmt.Sprintf("chat:typing:%s:*", chatID)
}

// StartTyping SETNX + TTL，同一 quiet period 只會成功一次
func (r *redisTypingRepository) StartTyping(ctx context.Context, chatID, userID, displayName string) (bool, error) {
	return r.client.SetNX(ctx, typingKey(chatID, userID), displayName, TypingIdleTimeout).Result()
}

// RefreshTyping 延長現有 key 的 TTL
func (r *redisTypingRepository) RefreshTyping(ctx context.Context, chatID, userID string) error {
	return r.client.Expire(ctx, typingKey(chatID, userID), TypingIdleTimeout).Err()
}

// StopTyping 立即清除
func (r *redisTypingRepository) StopTyping(ctx context.Context, chatID, userID string) error {
	return r.client.Del(ctx, typingKey(chatID, userID)).Err()
}

// ActiveTypers 目前還在 typing 的 user id -> display name
func (r *redisTypingRepository) ActiveTypers(ctx context.Context, chatID string) (map[string]string, error) {
	keys, err := r.client.Keys(ctx, typingPattern(chatID)).Result()
	if err != nil {
		return nil, err
	}

	typers := make(map[string]string, len(keys))
	prefix := fmt.Sprintf("chat:typing:%s:", chatID)
	for _, key := range keys {
		name, err := r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // 剛好過期
		} else if err != nil {
			return nil, err
		}
		typers[key[len(prefix):]] = name
	}
	return typers, nil
}
