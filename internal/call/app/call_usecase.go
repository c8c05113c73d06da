package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"social_network_service/internal/call/domain"
	chatdomain "social_network_service/internal/chat/domain"
	chatrepo "social_network_service/internal/chat/repository"
	notifydomain "social_network_service/internal/notify/domain"
	"social_network_service/pkg/database"
	"social_network_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// CallRecordTTL 通話紀錄在 redis 的存活時間，超時未清的殘留靠它回收
	CallRecordTTL = 4 * time.Hour
	// RingTimeout 響鈴多久沒人接視為未接
	RingTimeout = 45 * time.Second
	// CleanupTimeout end/decline 後等待 provider 資源釋放的上限
	CleanupTimeout = 5 * time.Second
)

var (
	// ErrCallNotFound 通話不存在或已結束
	ErrCallNotFound = errors.New("call not found")
	// ErrNotCallParty 非通話當事人
	ErrNotCallParty = errors.New("not a party of this call")
	// ErrAlreadyInCall 同一 chat 已有進行中的通話
	ErrAlreadyInCall = errors.New("call already in progress for this chat")
)

// CallUseCase 負責通話生命週期與 provider 憑證
type CallUseCase struct {
	records   database.RedisRepository[domain.CallRecord]
	registry  *ProviderRegistry
	pub       chatrepo.EventPublisher
	pushQueue database.RabbitRepo
	now       func() time.Time
}

// NewCallUseCase init call use case
func NewCallUseCase(
	records database.RedisRepository[domain.CallRecord],
	registry *ProviderRegistry,
	pub chatrepo.EventPublisher,
	pushQueue database.RabbitRepo,
) *CallUseCase {
	return &CallUseCase{
		records:   records,
		registry:  registry,
		pub:       pub,
		pushQueue: pushQueue,
		now:       time.Now,
	}
}

func callKey(callID string) string {
	return fmt.Sprintf("call:record:%s", callID)
}

func chatCallKey(chatID string) string {
	return fmt.Sprintf("call:chat:%s", chatID)
}

// Initiate 發起通話：建 record、發 incoming_call、排 push 通知
// 回傳 caller 的進房憑證
func (uc *CallUseCase) Initiate(ctx context.Context, callerID, calleeID, chatID string, callType domain.CallType, providerName string) (*domain.CallRecord, *domain.JoinCredential, error) {
	provider, err := uc.registry.Resolve(providerName)
	if err != nil {
		return nil, nil, err
	}

	record := domain.CallRecord{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		CallerID:  callerID,
		CalleeID:  calleeID,
		CallType:  callType,
		Provider:  provider.Name(),
		Status:    domain.CallRinging,
		StartedAt: uc.now().Unix(),
	}

	// 同一 chat 同時只允許一通，SETNX 擋住並發發起
	ok, err := uc.records.SetNX(ctx, chatCallKey(chatID), record, CallRecordTTL)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrAlreadyInCall
	}

	if err := uc.records.Set(ctx, callKey(record.ID), record, CallRecordTTL); err != nil {
		return nil, nil, err
	}

	cred, err := provider.JoinCredential(record.ID, callerID, CredentialTTL)
	if err != nil {
		uc.cleanup(ctx, &record)
		return nil, nil, err
	}

	if err := uc.pub.Publish(chatrepo.UserChannelPrefix+calleeID, chatdomain.RealtimeEvent{
		Event:    chatdomain.EventIncomingCall,
		ChatID:   chatID,
		SenderID: callerID,
		Payload: map[string]interface{}{
			"call_id":   record.ID,
			"call_type": string(callType),
			"provider":  provider.Name(),
		},
	}); err != nil {
		logger.Log.Errorf("publish incoming_call error:", err)
	}

	// 對方離線時靠 push 叫醒
	uc.enqueuePush(notifydomain.PushNotification{
		UserID:   calleeID,
		Title:    "Incoming call",
		Body:     fmt.Sprintf("Incoming %s call", callType),
		Action:   notifydomain.ActionAcceptCall,
		ChatID:   chatID,
		CallID:   record.ID,
		SenderID: callerID,
	})

	return &record, cred, nil
}

// Accept 接聽，回傳 callee 的進房憑證
func (uc *CallUseCase) Accept(ctx context.Context, userID, callID string) (*domain.JoinCredential, error) {
	record, err := uc.records.Get(ctx, callKey(callID))
	if err != nil {
		return nil, ErrCallNotFound
	}
	if record.CalleeID != userID {
		return nil, ErrNotCallParty
	}
	if record.Status != domain.CallRinging {
		return nil, ErrCallNotFound
	}

	provider, err := uc.registry.Resolve(record.Provider)
	if err != nil {
		return nil, err
	}
	cred, err := provider.JoinCredential(record.ID, userID, CredentialTTL)
	if err != nil {
		return nil, err
	}

	record.Status = domain.CallConnected
	record.ConnectedAt = uc.now().Unix()
	if err := uc.records.Set(ctx, callKey(callID), record, CallRecordTTL); err != nil {
		return nil, err
	}

	return cred, nil
}

// Decline 拒接，通知 caller 後進入清理
func (uc *CallUseCase) Decline(ctx context.Context, userID, callID, reason string) error {
	record, err := uc.records.Get(ctx, callKey(callID))
	if err != nil {
		return ErrCallNotFound
	}
	if record.CalleeID != userID && record.CallerID != userID {
		return ErrNotCallParty
	}
	if record.Status == domain.CallDeclined || record.Status == domain.CallEnded {
		return nil // 冪等
	}

	record.Status = domain.CallDeclined
	record.EndedAt = uc.now().Unix()
	record.Reason = reason
	if err := uc.records.Set(ctx, callKey(callID), record, CallRecordTTL); err != nil {
		return err
	}

	peer := record.CallerID
	if userID == record.CallerID {
		peer = record.CalleeID
	}
	if err := uc.pub.Publish(chatrepo.UserChannelPrefix+peer, chatdomain.RealtimeEvent{
		Event:    chatdomain.EventCallDeclined,
		ChatID:   record.ChatID,
		SenderID: userID,
		Payload: map[string]interface{}{
			"call_id": callID,
			"reason":  reason,
		},
	}); err != nil {
		logger.Log.Errorf("publish call_declined error:", err)
	}

	uc.cleanupWithTimeout(&record)
	return nil
}

// End 結束通話，任一方都可掛斷
func (uc *CallUseCase) End(ctx context.Context, userID, callID string) (*domain.CallRecord, error) {
	record, err := uc.records.Get(ctx, callKey(callID))
	if err != nil {
		return nil, ErrCallNotFound
	}
	if record.CalleeID != userID && record.CallerID != userID {
		return nil, ErrNotCallParty
	}
	if record.Status == domain.CallEnded || record.Status == domain.CallDeclined {
		return &record, nil
	}

	record.Status = domain.CallEnded
	record.EndedAt = uc.now().Unix()
	if err := uc.records.Set(ctx, callKey(callID), record, CallRecordTTL); err != nil {
		return nil, err
	}

	peer := record.CallerID
	if userID == record.CallerID {
		peer = record.CalleeID
	}
	if err := uc.pub.Publish(chatrepo.UserChannelPrefix+peer, chatdomain.RealtimeEvent{
		Event:    chatdomain.EventCallEnded,
		ChatID:   record.ChatID,
		SenderID: userID,
		Payload: map[string]interface{}{
			"call_id":  callID,
			"duration": record.EndedAt - record.ConnectedAt,
		},
	}); err != nil {
		logger.Log.Errorf("publish call_ended error:", err)
	}

	uc.cleanupWithTimeout(&record)
	return &record, nil
}

// Get read call record
func (uc *CallUseCase) Get(ctx context.Context, callID string) (*domain.CallRecord, error) {
	record, err := uc.records.Get(ctx, callKey(callID))
	if err != nil {
		return nil, ErrCallNotFound
	}
	return &record, nil
}

// cleanupWithTimeout 背景清理 chat 佔用鎖
// provider 資源釋放可能卡住，超過 CleanupTimeout 一律放棄等待直接清，
// 避免 chat 因為殘留鎖再也打不了電話
func (uc *CallUseCase) cleanupWithTimeout(record *domain.CallRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), CleanupTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			uc.cleanup(ctx, record)
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			logger.Log.Warn("call cleanup timed out, forcing unlock",
				zap.String("callID", record.ID),
				zap.String("chatID", record.ChatID),
			)
			forceCtx, forceCancel := context.WithTimeout(context.Background(), time.Second)
			defer forceCancel()
			if err := uc.records.Del(forceCtx, chatCallKey(record.ChatID)); err != nil {
				logger.Log.Errorf("force unlock error:", err)
			}
		}
	}()
}

func (uc *CallUseCase) cleanup(ctx context.Context, record *domain.CallRecord) {
	if err := uc.records.Del(ctx, chatCallKey(record.ChatID)); err != nil {
		logger.Log.Errorf("call cleanup error:", err)
	}
}

func (uc *CallUseCase) enqueuePush(n notifydomain.PushNotification) {
	if uc.pushQueue == nil {
		return
	}
	body, err := json.Marshal(n)
	if err != nil {
		logger.Log.Errorf("marshal push error:", err)
		return
	}
	if err := uc.pushQueue.Publish("", notifydomain.PushQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		logger.Log.Errorf("enqueue push error:", err)
	}
}
