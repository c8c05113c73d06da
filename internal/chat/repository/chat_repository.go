package repository

import (
	"context"
	"errors"

	"social_network_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound 查無資料，呼叫端用來跟真正的 I/O 錯誤區分
var ErrNotFound = errors.New("not found")

// ChatRepository definition chat thread
type ChatRepository interface {
	CreateChat(ctx context.Context, chat *domain.Chat) error
	FindByID(ctx context.Context, chatID string) (*domain.Chat, error)
	UpdateChat(ctx context.Context, chat *domain.Chat) error
	UpdateStatus(ctx context.Context, chatID string, status domain.ChatStatus) error
	UpdateLastMessage(ctx context.Context, chatID string, preview *domain.MessagePreview) error
	// FindByParticipant 依狀態撈出 viewer 的 chat，按 last_activity 降冪
	FindByParticipant(ctx context.Context, userID string, status domain.ChatStatus) ([]*domain.Chat, error)
	FindOneDirectChat(ctx context.Context, userA, userB string) (*domain.Chat, error)
}

type chatRepository struct {
	chatsColl *mongo.Collection
}

// NewMongoChatRepository create new mongo chat
func NewMongoChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{
		chatsColl: db.Collection(string(domain.Chats)),
	}
}

// CreateChat create chat
func (r *chatRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	_, err := r.chatsColl.InsertOne(ctx, chat)
	return err
}

// FindByID find chat by id
func (r *chatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.chatsColl.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// UpdateChat update chat info
func (r *chatRepository) UpdateChat(ctx context.Context, chat *domain.Chat) error {
	filter := bson.M{"_id": chat.ID}
	update := bson.M{"$set": chat}
	_, err := r.chatsColl.UpdateOne(ctx, filter, update)
	return err
}

// UpdateStatus flip chat status (accept / decline)
func (r *chatRepository) UpdateStatus(ctx context.Context, chatID string, status domain.ChatStatus) error {
	filter := bson.M{"_id": chatID}
	update := bson.M{"$set": bson.M{"status": status}}
	_, err := r.chatsColl.UpdateOne(ctx, filter, update)
	return err
}

// UpdateLastMessage 更新聊天列表摘要與 last_activity
func (r *chatRepository) UpdateLastMessage(ctx context.Context, chatID string, preview *domain.MessagePreview) error {
	filter := bson.M{"_id": chatID}
	update := bson.M{"$set": bson.M{
		"last_message":  preview,
		"last_activity": preview.Timestamp,
	}}
	_, err := r.chatsColl.UpdateOne(ctx, filter, update)
	return err
}

// FindByParticipant find chats for user by status
func (r *chatRepository) FindByParticipant(ctx context.Context, userID string, status domain.ChatStatus) ([]*domain.Chat, error) {
	filter := bson.M{
		"participants": userID,
		"status":       status,
	}
	opts := options.Find().SetSort(bson.M{"last_activity": -1})

	cur, err := r.chatsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []*domain.Chat
	for cur.Next(ctx) {
		var c domain.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		chats = append(chats, &c)
	}

	if err := cur.Err(); err != nil {
		return nil, err
	}

	return chats, nil
}

// FindOneDirectChat find direct chat between two users
func (r *chatRepository) FindOneDirectChat(ctx context.Context, userA, userB string) (*domain.Chat, error) {
	filter := bson.M{
		"chat_type": domain.ChatTypeDirect,
		"participants": bson.M{
			"$all": []string{userA, userB},
		},
	}
	var chat domain.Chat
	err := r.chatsColl.FindOne(ctx, filter).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &chat, nil
}
