package app

import (
	"context"
	"time"

	"social_network_service/internal/call/domain"
	chatdomain "social_network_service/internal/chat/domain"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/mock"
)

// MockCallRecordRepository Mock RedisRepository[CallRecord]
type MockCallRecordRepository struct {
	mock.Mock
}

// Set moke set call record
func (m *MockCallRecordRepository) Set(ctx context.Context, key string, value domain.CallRecord, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// SetNX moke setnx call lock
func (m *MockCallRecordRepository) SetNX(ctx context.Context, key string, value domain.CallRecord, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

// Get moke get call record
func (m *MockCallRecordRepository) Get(ctx context.Context, key string) (domain.CallRecord, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.CallRecord), args.Error(1)
}

// Del moke del call record
func (m *MockCallRecordRepository) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTTL moke get ttl
func (m *MockCallRecordRepository) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// ExtendTTL moke extend ttl
func (m *MockCallRecordRepository) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

// MockCallEventPublisher Mock EventPublisher
type MockCallEventPublisher struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockCallEventPublisher) Publish(channel string, ev chatdomain.RealtimeEvent) error {
	args := m.Called(channel, ev)
	return args.Error(0)
}

// MockRabbitRepo Mock RabbitRepo
type MockRabbitRepo struct {
	mock.Mock
}

// GetRabbit moke get channel
func (m *MockRabbitRepo) GetRabbit() *amqp.Channel {
	return nil
}

// Publish moke publish push message
func (m *MockRabbitRepo) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}
