package repository

import (
	"context"
	"fmt"
	"time"

	"social_network_service/internal/chat/domain"
	"social_network_service/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message bucket access
type MessageRepository interface {
	// InsertMessages 在指定桶中新增多則訊息，桶不存在時建立新桶
	InsertMessages(ctx context.Context, bucket *domain.MessageBucket) error
	// FindBucket 查詢指定 chat 及日期的桶
	FindBucket(ctx context.Context, chatID, date string) (*domain.MessageBucket, error)
	// UpdateBucket 更新桶內的訊息（例如已讀狀態、刪除）
	UpdateBucket(ctx context.Context, bucket *domain.MessageBucket) error
	// FindEarliestUnread 找到第一個含該用戶未讀訊息的桶
	FindEarliestUnread(ctx context.Context, userID, chatID string) (*domain.MessageBucket, error)
	FindMessagesBefore(ctx context.Context, chatID string, beforeTimestamp int64) ([]domain.ChatMessage, error)
	CountUnreadMessagesByChat(ctx context.Context, userID string) ([]domain.ChatUnreadInfo, error)
	// FindBucketWithMessage 找到包含指定訊息的桶
	FindBucketWithMessage(ctx context.Context, chatID, messageID string) (*domain.MessageBucket, error)
	// RemoveMessage 從桶中移除指定訊息
	RemoveMessage(ctx context.Context, chatID, date, messageID string) error
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll: db.Collection(string(domain.Messages)),
	}
}

func (r *chatMessageRepository) FindBucket(ctx context.Context, chatID, date string) (*domain.MessageBucket, error) {
	filter := bson.M{"chat_id": chatID, "date": date}
	var bucket domain.MessageBucket
	err := r.coll.FindOne(ctx, filter).Decode(&bucket)
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// InsertMessages - 寫入新的訊息桶
func (r *chatMessageRepository) InsertMessages(ctx context.Context, bucket *domain.MessageBucket) error {
	_, err := r.coll.InsertOne(ctx, bucket)
	return err
}

// UpdateBucket - 覆寫桶內容（read_by 更新、刪除訊息）
func (r *chatMessageRepository) UpdateBucket(ctx context.Context, bucket *domain.MessageBucket) error {
	filter := bson.M{"chat_id": bucket.ChatID, "date": bucket.Date}
	update := bson.M{"$set": bucket}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// FindEarliestUnread - 尋找 userID 在 chatID 裡第一個含未讀訊息的桶
func (r *chatMessageRepository) FindEarliestUnread(ctx context.Context, userID, chatID string) (*domain.MessageBucket, error) {
	filter := bson.M{"chat_id": chatID}
	// 按日期升序排序（最早的桶在前）
	opts := options.Find()
	opts.SetSort(bson.M{"date": 1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var buckets []domain.MessageBucket
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}

	for _, bucket := range buckets {
		for _, msg := range bucket.Messages {
			if !pkg.Contains(msg.ReadBy, userID) {
				// 返回整個桶（即當天所有訊息）
				return &bucket, nil
			}
		}
	}
	return nil, nil
}

func (r *chatMessageRepository) FindMessagesBefore(ctx context.Context, chatID string, beforeTimestamp int64) ([]domain.ChatMessage, error) {
	day := time.Unix(beforeTimestamp, 0).Format("2006-01-02")
	filter := bson.M{
		"chat_id": chatID,
		"date":    day,
	}
	var bucket domain.MessageBucket
	err := r.coll.FindOne(ctx, filter).Decode(&bucket)
	if err != nil {
		return nil, err
	}
	var messages []domain.ChatMessage
	for _, msg := range bucket.Messages {
		if msg.Timestamp < beforeTimestamp {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (r *chatMessageRepository) CountUnreadMessagesByChat(ctx context.Context, userID string) ([]domain.ChatUnreadInfo, error) {
	pipeline := mongo.Pipeline{
		// 1. 展開每個桶的 messages 陣列
		bson.D{{Key: "$unwind", Value: "$messages"}},
		// 2. 過濾出未讀訊息（read_by 不包含 userID）
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "messages.read_by", Value: bson.D{{Key: "$ne", Value: userID}}},
		}}},
		// 3. 按 chat_id 分組，計算未讀數量和該組未讀訊息中的最大時間戳
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$chat_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_unread_timestamp", Value: bson.D{{Key: "$max", Value: "$messages.timestamp"}}},
		}}},
		// 4. 根據 last_unread_timestamp 降序排序
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "last_unread_timestamp", Value: -1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	var results []domain.ChatUnreadInfo
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	return results, nil
}

// FindBucketWithMessage find the bucket holding messageID
func (r *chatMessageRepository) FindBucketWithMessage(ctx context.Context, chatID, messageID string) (*domain.MessageBucket, error) {
	filter := bson.M{
		"chat_id":     chatID,
		"messages.id": messageID,
	}
	var bucket domain.MessageBucket
	err := r.coll.FindOne(ctx, filter).Decode(&bucket)
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// RemoveMessage pull message from its bucket
func (r *chatMessageRepository) RemoveMessage(ctx context.Context, chatID, date, messageID string) error {
	filter := bson.M{"chat_id": chatID, "date": date}
	update := bson.M{"$pull": bson.M{"messages": bson.M{"id": messageID}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}
