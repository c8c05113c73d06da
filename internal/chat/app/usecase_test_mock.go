package app

import (
	"context"
	"io"

	"social_network_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockChatRepository Mock ChatRepository
type MockChatRepository struct {
	mock.Mock
}

// CreateChat moke create chat
func (m *MockChatRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

// FindByID moke find chat by id
func (m *MockChatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateChat moke update chat
func (m *MockChatRepository) UpdateChat(ctx context.Context, chat *domain.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

// UpdateStatus moke update chat status
func (m *MockChatRepository) UpdateStatus(ctx context.Context, chatID string, status domain.ChatStatus) error {
	args := m.Called(ctx, chatID, status)
	return args.Error(0)
}

// UpdateLastMessage moke update chat preview
func (m *MockChatRepository) UpdateLastMessage(ctx context.Context, chatID string, preview *domain.MessagePreview) error {
	args := m.Called(ctx, chatID, preview)
	return args.Error(0)
}

// FindByParticipant moke find chats by participant
func (m *MockChatRepository) FindByParticipant(ctx context.Context, userID string, status domain.ChatStatus) ([]*domain.Chat, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) != nil {
		return args.Get(0).([]*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindOneDirectChat moke find direct chat
func (m *MockChatRepository) FindOneDirectChat(ctx context.Context, userA, userB string) (*domain.Chat, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRequestRepository Mock RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

// CreateRequest moke create request
func (m *MockRequestRepository) CreateRequest(ctx context.Context, req *domain.ChatRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// FindByChatID moke find request by chat id
func (m *MockRequestRepository) FindByChatID(ctx context.Context, chatID string) (*domain.ChatRequest, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindPendingByRecipient moke find pending requests
func (m *MockRequestRepository) FindPendingByRecipient(ctx context.Context, userID string) ([]*domain.ChatRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]*domain.ChatRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateRequestStatus moke update request status
func (m *MockRequestRepository) UpdateRequestStatus(ctx context.Context, chatID string, newStatus domain.RequestStatus) error {
	args := m.Called(ctx, chatID, newStatus)
	return args.Error(0)
}

// FindBetween moke find request between two users
func (m *MockRequestRepository) FindBetween(ctx context.Context, initiatorID, recipientID string) (*domain.ChatRequest, error) {
	args := m.Called(ctx, initiatorID, recipientID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// InsertMessages moke insert msg bucket
func (m *MockMessageRepository) InsertMessages(ctx context.Context, bucket *domain.MessageBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// FindBucket moke find bucket by chat and date
func (m *MockMessageRepository) FindBucket(ctx context.Context, chatID, date string) (*domain.MessageBucket, error) {
	args := m.Called(ctx, chatID, date)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessageBucket), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateBucket moke update msg bucket
func (m *MockMessageRepository) UpdateBucket(ctx context.Context, bucket *domain.MessageBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// FindEarliestUnread moke find earliest unread bucket
func (m *MockMessageRepository) FindEarliestUnread(ctx context.Context, userID, chatID string) (*domain.MessageBucket, error) {
	args := m.Called(ctx, userID, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessageBucket), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindMessagesBefore moke find before msg
func (m *MockMessageRepository) FindMessagesBefore(ctx context.Context, chatID string, beforeTimestamp int64) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, chatID, beforeTimestamp)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountUnreadMessagesByChat moke count unread by chat
func (m *MockMessageRepository) CountUnreadMessagesByChat(ctx context.Context, userID string) ([]domain.ChatUnreadInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatUnreadInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindBucketWithMessage moke find bucket holding msg
func (m *MockMessageRepository) FindBucketWithMessage(ctx context.Context, chatID, messageID string) (*domain.MessageBucket, error) {
	args := m.Called(ctx, chatID, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessageBucket), args.Error(1)
	}
	return nil, args.Error(1)
}

// RemoveMessage moke remove msg
func (m *MockMessageRepository) RemoveMessage(ctx context.Context, chatID, date, messageID string) error {
	args := m.Called(ctx, chatID, date, messageID)
	return args.Error(0)
}

// MockDecisionRepository Mock DecisionRepository
type MockDecisionRepository struct {
	mock.Mock
}

// Save moke save decision
func (m *MockDecisionRepository) Save(ctx context.Context, userID, chatID string, decision domain.RequestDecision) error {
	args := m.Called(ctx, userID, chatID, decision)
	return args.Error(0)
}

// Load moke load decisions
func (m *MockDecisionRepository) Load(ctx context.Context, userID string) (map[string]domain.RequestDecision, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]domain.RequestDecision), args.Error(1)
	}
	return nil, args.Error(1)
}

// Get moke get decision
func (m *MockDecisionRepository) Get(ctx context.Context, userID, chatID string) (domain.RequestDecision, bool, error) {
	args := m.Called(ctx, userID, chatID)
	return args.Get(0).(domain.RequestDecision), args.Bool(1), args.Error(2)
}

// MockTypingRepository Mock TypingRepository
type MockTypingRepository struct {
	mock.Mock
}

// StartTyping moke setnx typing key
func (m *MockTypingRepository) StartTyping(ctx context.Context, chatID, userID, displayName string) (bool, error) {
	args := m.Called(ctx, chatID, userID, displayName)
	return args.Bool(0), args.Error(1)
}

// RefreshTyping moke extend typing ttl
func (m *MockTypingRepository) RefreshTyping(ctx context.Context, chatID, userID string) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

// StopTyping moke del typing key
func (m *MockTypingRepository) StopTyping(ctx context.Context, chatID, userID string) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

// ActiveTypers moke list typers
func (m *MockTypingRepository) ActiveTypers(ctx context.Context, chatID string) (map[string]string, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAttachmentRepository Mock AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// Upload moke upload attachment
func (m *MockAttachmentRepository) Upload(ctx context.Context, chatID string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, chatID, reader, size, contentType)
	return args.String(0), args.Error(1)
}

// PresignGet moke presign get url
func (m *MockAttachmentRepository) PresignGet(ctx context.Context, objectName string) (string, error) {
	args := m.Called(ctx, objectName)
	return args.String(0), args.Error(1)
}

// Remove moke remove attachment
func (m *MockAttachmentRepository) Remove(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

// MockEventPublisher Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockEventPublisher) Publish(channel string, ev domain.RealtimeEvent) error {
	args := m.Called(channel, ev)
	return args.Error(0)
}

// MockEventStream Mock EventStream
type MockEventStream struct {
	mock.Mock
}

// Append moke append to event stream
func (m *MockEventStream) Append(ctx context.Context, key string, ev domain.RealtimeEvent) error {
	args := m.Called(ctx, key, ev)
	return args.Error(0)
}

// MockFollowService Mock FollowService
type MockFollowService struct {
	mock.Mock
}

// ListFollowing moke list following ids
func (m *MockFollowService) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// Follow moke follow target
func (m *MockFollowService) Follow(ctx context.Context, userID, targetID string) error {
	args := m.Called(ctx, userID, targetID)
	return args.Error(0)
}
