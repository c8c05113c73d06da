package repository

import (
	"context"
	"fmt"

	"social_network_service/internal/chat/domain"

	"github.com/go-redis/redis/v8"
)

// DecisionRepository - accept/decline 決定的持久化快取
// 重新連線後、下一次 full resync 完成前，categorize 仍以此為準
type DecisionRepository interface {
	Save(ctx context.Context, userID, chatID string, decision domain.RequestDecision) error
	Load(ctx context.Context, userID string) (map[string]domain.RequestDecision, error)
	Get(ctx context.Context, userID, chatID string) (domain.RequestDecision, bool, error)
}

type redisDecisionRepository struct {
	client *redis.Client
}

// NewRedisDecisionRepository create DecisionRepository on redis hash
func NewRedisDecisionRepository(client *redis.Client) DecisionRepository {
	return &redisDecisionRepository{client: client}
}

func decisionKey(userID string) string {
	return fmt.Sprintf("chat:decisions:%s", userID)
}

// Save 寫入一筆決定，最後寫入者獲勝
func (r *redisDecisionRepository) Save(ctx context.Context, userID, chatID string, decision domain.RequestDecision) error {
	return r.client.HSet(ctx, decisionKey(userID), chatID, string(decision)).Err()
}

// Load 讀出該用戶全部決定
func (r *redisDecisionRepository) Load(ctx context.Context, userID string) (map[string]domain.RequestDecision, error) {
	raw, err := r.client.HGetAll(ctx, decisionKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	decisions := make(map[string]domain.RequestDecision, len(raw))
	for chatID, d := range raw {
		decisions[chatID] = domain.RequestDecision(d)
	}
	return decisions, nil
}

// Get 讀出單一 chat 的決定
func (r *redisDecisionRepository) Get(ctx context.Context, userID, chatID string) (domain.RequestDecision, bool, error) {
	val, err := r.client.HGet(ctx, decisionKey(userID), chatID).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return domain.RequestDecision(val), true, nil
}
