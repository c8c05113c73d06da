package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"social_network_service/internal/call/domain"
	chatdomain "social_network_service/internal/chat/domain"
	chatrepo "social_network_service/internal/chat/repository"
	notifydomain "social_network_service/internal/notify/domain"
	"social_network_service/pkg/logger"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCallUseCaseForTest() (*CallUseCase, *MockCallRecordRepository, *MockCallEventPublisher, *MockRabbitRepo) {
	records := new(MockCallRecordRepository)
	pub := new(MockCallEventPublisher)
	rabbit := new(MockRabbitRepo)
	registry := NewProviderRegistry(NewAgoraProvider("app-id", "app-cert"))
	return NewCallUseCase(records, registry, pub, rabbit), records, pub, rabbit
}

func TestCallUseCase_Initiate(t *testing.T) {
	logger.SetNewNop()
	uc, records, pub, rabbit := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("SetNX", ctx, "call:chat:chat-1", mock.MatchedBy(func(r domain.CallRecord) bool {
		return r.ChatID == "chat-1" && r.Status == domain.CallRinging
	}), CallRecordTTL).Return(true, nil)
	records.On("Set", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "call:record:")
	}), mock.AnythingOfType("domain.CallRecord"), CallRecordTTL).Return(nil)

	pub.On("Publish", chatrepo.UserChannelPrefix+"bob", mock.MatchedBy(func(ev chatdomain.RealtimeEvent) bool {
		return ev.Event == chatdomain.EventIncomingCall && ev.ChatID == "chat-1" && ev.SenderID == "alice"
	})).Return(nil)
	rabbit.On("Publish", "", notifydomain.PushQueue, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var n notifydomain.PushNotification
		if err := json.Unmarshal(msg.Body, &n); err != nil {
			return false
		}
		return n.UserID == "bob" && n.Action == notifydomain.ActionAcceptCall && n.ChatID == "chat-1"
	})).Return(nil)

	record, cred, err := uc.Initiate(ctx, "alice", "bob", "chat-1", domain.CallTypeVideo, "")

	assert.NoError(t, err)
	assert.Equal(t, domain.CallRinging, record.Status)
	assert.Equal(t, "alice", record.CallerID)
	assert.Equal(t, ProviderAgora, record.Provider)
	assert.Equal(t, ProviderAgora, cred.Provider)
	assert.Equal(t, record.ID, cred.ChannelID)
	assert.NotEmpty(t, cred.Token)
	records.AssertExpectations(t)
	pub.AssertExpectations(t)
	rabbit.AssertExpectations(t)
}

// 同一 chat 已有通話時直接回 busy，不留任何痕跡
func TestCallUseCase_Initiate_Busy(t *testing.T) {
	logger.SetNewNop()
	uc, records, pub, rabbit := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("SetNX", ctx, "call:chat:chat-1", mock.AnythingOfType("domain.CallRecord"), CallRecordTTL).Return(false, nil)

	_, _, err := uc.Initiate(ctx, "alice", "bob", "chat-1", domain.CallTypeAudio, "")

	assert.ErrorIs(t, err, ErrAlreadyInCall)
	records.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	rabbit.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCallUseCase_Initiate_UnknownProvider(t *testing.T) {
	logger.SetNewNop()
	uc, records, _, _ := newCallUseCaseForTest()

	_, _, err := uc.Initiate(context.Background(), "alice", "bob", "chat-1", domain.CallTypeAudio, "nonexistent")

	assert.ErrorIs(t, err, ErrUnknownProvider)
	records.AssertNotCalled(t, "SetNX", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCallUseCase_Accept(t *testing.T) {
	logger.SetNewNop()
	uc, records, _, _ := newCallUseCaseForTest()
	ctx := context.Background()

	ringing := domain.CallRecord{
		ID: "call-1", ChatID: "chat-1", CallerID: "alice", CalleeID: "bob",
		Provider: ProviderAgora, Status: domain.CallRinging,
	}
	records.On("Get", ctx, "call:record:call-1").Return(ringing, nil)
	records.On("Set", ctx, "call:record:call-1", mock.MatchedBy(func(r domain.CallRecord) bool {
		return r.Status == domain.CallConnected && r.ConnectedAt > 0
	}), CallRecordTTL).Return(nil)

	cred, err := uc.Accept(ctx, "bob", "call-1")

	assert.NoError(t, err)
	assert.Equal(t, "call-1", cred.ChannelID)
	records.AssertExpectations(t)
}

// 只有被叫方能接聽
func TestCallUseCase_Accept_NotCallee(t *testing.T) {
	logger.SetNewNop()
	uc, records, _, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:call-1").Return(domain.CallRecord{
		ID: "call-1", CallerID: "alice", CalleeID: "bob", Provider: ProviderAgora, Status: domain.CallRinging,
	}, nil)

	_, err := uc.Accept(ctx, "alice", "call-1")

	assert.ErrorIs(t, err, ErrNotCallParty)
	records.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 非響鈴狀態不能接聽
func TestCallUseCase_Accept_NotRinging(t *testing.T) {
	logger.SetNewNop()
	uc, records, _, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:call-1").Return(domain.CallRecord{
		ID: "call-1", CalleeID: "bob", Provider: ProviderAgora, Status: domain.CallEnded,
	}, nil)

	_, err := uc.Accept(ctx, "bob", "call-1")

	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestCallUseCase_Decline(t *testing.T) {
	logger.SetNewNop()
	uc, records, pub, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:call-1").Return(domain.CallRecord{
		ID: "call-1", ChatID: "chat-1", CallerID: "alice", CalleeID: "bob", Status: domain.CallRinging,
	}, nil)
	records.On("Set", ctx, "call:record:call-1", mock.MatchedBy(func(r domain.CallRecord) bool {
		return r.Status == domain.CallDeclined && r.Reason == "busy"
	}), CallRecordTTL).Return(nil)
	// 清理在背景跑，可能在測試結束前後發生
	records.On("Del", mock.Anything, "call:chat:chat-1").Return(nil).Maybe()
	pub.On("Publish", chatrepo.UserChannelPrefix+"alice", mock.MatchedBy(func(ev chatdomain.RealtimeEvent) bool {
		return ev.Event == chatdomain.EventCallDeclined && ev.SenderID == "bob"
	})).Return(nil)

	err := uc.Decline(ctx, "bob", "call-1", "busy")

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

// 已結束的通話再 decline 是冪等 no-op
func TestCallUseCase_Decline_Idempotent(t *testing.T) {
	logger.SetNewNop()
	uc, records, pub, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:call-1").Return(domain.CallRecord{
		ID: "call-1", CallerID: "alice", CalleeID: "bob", Status: domain.CallDeclined,
	}, nil)

	err := uc.Decline(ctx, "bob", "call-1", "busy")

	assert.NoError(t, err)
	records.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCallUseCase_End(t *testing.T) {
	logger.SetNewNop()
	uc, records, pub, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:call-1").Return(domain.CallRecord{
		ID: "call-1", ChatID: "chat-1", CallerID: "alice", CalleeID: "bob",
		Status: domain.CallConnected, ConnectedAt: 100,
	}, nil)
	records.On("Set", ctx, "call:record:call-1", mock.MatchedBy(func(r domain.CallRecord) bool {
		return r.Status == domain.CallEnded && r.EndedAt > 0
	}), CallRecordTTL).Return(nil)
	records.On("Del", mock.Anything, "call:chat:chat-1").Return(nil).Maybe()
	// caller 掛斷要通知 callee
	pub.On("Publish", chatrepo.UserChannelPrefix+"bob", mock.MatchedBy(func(ev chatdomain.RealtimeEvent) bool {
		return ev.Event == chatdomain.EventCallEnded
	})).Return(nil)

	record, err := uc.End(ctx, "alice", "call-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.CallEnded, record.Status)
	pub.AssertExpectations(t)
}

// 外人不能掛別人的電話
func TestCallUseCase_End_NotParty(t *testing.T) {
	logger.SetNewNop()
	uc, records, _, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:call-1").Return(domain.CallRecord{
		ID: "call-1", CallerID: "alice", CalleeID: "bob", Status: domain.CallConnected,
	}, nil)

	_, err := uc.End(ctx, "eve", "call-1")

	assert.ErrorIs(t, err, ErrNotCallParty)
}

func TestCallUseCase_Get_NotFound(t *testing.T) {
	logger.SetNewNop()
	uc, records, _, _ := newCallUseCaseForTest()
	ctx := context.Background()

	records.On("Get", ctx, "call:record:gone").Return(domain.CallRecord{}, errors.New("redis.Nil"))

	_, err := uc.Get(ctx, "gone")

	assert.ErrorIs(t, err, ErrCallNotFound)
}
