package app

import (
	"context"
	"errors"
	"io"
	"time"

	"social_network_service/internal/chat/domain"
	"social_network_service/internal/chat/repository"
	"social_network_service/pkg"
	"social_network_service/pkg/logger"

	"github.com/google/uuid"
)

var (
	// ErrEmptyMessage 空白訊息在任何 I/O 之前就擋掉
	ErrEmptyMessage = errors.New("message content is empty")
	// ErrPendingChat 收件人尚未接受 request，不能先回覆
	ErrPendingChat = errors.New("chat request not yet accepted")
	// ErrChatNotFound chat 不存在
	ErrChatNotFound = errors.New("chat not found")
	// ErrNotParticipant 非參與者
	ErrNotParticipant = errors.New("not a participant of this chat")
	// ErrNotMessageOwner 只有發送者能刪除自己的訊息
	ErrNotMessageOwner = errors.New("not the message sender")
)

// ChatHistory History 的結果，IsRequest 告訴前端要渲染 accept/decline 橫幅
type ChatHistory struct {
	Chat      *domain.Chat
	Messages  []domain.ChatMessage
	IsRequest bool
}

// MessageUseCase 負責訊息收發、已讀、typing 與附件
type MessageUseCase struct {
	chatRepo       repository.ChatRepository
	msgRepo        repository.MessageRepository
	typingRepo     repository.TypingRepository
	attachmentRepo repository.AttachmentRepository
	pub            repository.EventPublisher
	stream         repository.EventStream
	now            func() time.Time
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	chatRepo repository.ChatRepository,
	msgRepo repository.MessageRepository,
	typingRepo repository.TypingRepository,
	attachmentRepo repository.AttachmentRepository,
	pub repository.EventPublisher,
	stream repository.EventStream,
) *MessageUseCase {
	return &MessageUseCase{
		chatRepo:       chatRepo,
		msgRepo:        msgRepo,
		typingRepo:     typingRepo,
		attachmentRepo: attachmentRepo,
		pub:            pub,
		stream:         stream,
		now:            time.Now,
	}
}

// History 載入 chat 的歷史訊息
// pending chat 一樣能看歷史（request 畫面要顯示第一則訊息），IsRequest 讓前端決定呈現
func (uc *MessageUseCase) History(ctx context.Context, userID, chatID string) (*ChatHistory, error) {
	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, ErrChatNotFound
	}
	if !pkg.Contains(chat.Participants, userID) {
		return nil, ErrNotParticipant
	}

	bucket, err := uc.msgRepo.FindEarliestUnread(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	if bucket != nil {
		messages = bucket.Messages
	} else {
		// 全部已讀時退回今天的桶
		today := uc.now().Format("2006-01-02")
		b, err := uc.msgRepo.FindBucket(ctx, chatID, today)
		if err == nil && b != nil {
			messages = b.Messages
		}
	}

	return &ChatHistory{
		Chat:      chat,
		Messages:  messages,
		IsRequest: chat.IsRequestFor(userID),
	}, nil
}

// Send 發送訊息
// 順序要求：空白檢查、pending 檢查都在任何寫入之前，失敗時不得留下任何副作用
func (uc *MessageUseCase) Send(ctx context.Context, userID, chatID, content, attachment string) (*domain.ChatMessage, error) {
	if pkg.IsBlank(content) && attachment == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, ErrChatNotFound
	}
	if !pkg.Contains(chat.Participants, userID) {
		return nil, ErrNotParticipant
	}
	// request 的收件人要先 accept 才能回覆，發起人可以繼續送（仍只有一串）
	if chat.Status == domain.ChatStatusPending && chat.InitiatorID != userID {
		return nil, ErrPendingChat
	}
	if chat.Status == domain.ChatStatusDeclined {
		return nil, ErrPendingChat
	}

	now := uc.now()
	msg := domain.ChatMessage{
		ID:         uuid.New().String(),
		ChatID:     chatID,
		SenderID:   userID,
		Content:    content,
		Attachment: attachment,
		Timestamp:  now.Unix(),
		ReadBy:     []string{userID},
	}

	if err := uc.appendToBucket(ctx, chatID, now.Format("2006-01-02"), msg); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.UpdateLastMessage(ctx, chatID, &domain.MessagePreview{
		SenderID:  userID,
		Content:   content,
		Timestamp: msg.Timestamp,
	}); err != nil {
		logger.Log.Errorf("update last message error:", err)
	}

	ev := domain.RealtimeEvent{
		Event:    domain.EventNewMessage,
		ChatID:   chatID,
		SenderID: userID,
		Message:  &msg,
		// UnreadCount 留空：由各收端自己 +1，count 僅在 resync 時校正
	}
	for _, p := range chat.Participants {
		if p == userID {
			continue
		}
		if err := uc.pub.Publish(repository.UserChannelPrefix+p, ev); err != nil {
			logger.Log.Errorf("publish error:", err)
		}
	}
	if uc.stream != nil {
		if err := uc.stream.Append(ctx, chatID, ev); err != nil {
			logger.Log.Errorf("event stream append error:", err)
		}
	}

	return &msg, nil
}

// appendToBucket 寫入當日桶，同 id 訊息不重複寫入
func (uc *MessageUseCase) appendToBucket(ctx context.Context, chatID, date string, msg domain.ChatMessage) error {
	bucket, err := uc.msgRepo.FindBucket(ctx, chatID, date)
	if err != nil || bucket == nil {
		return uc.msgRepo.InsertMessages(ctx, &domain.MessageBucket{
			ChatID:   chatID,
			Date:     date,
			Messages: []domain.ChatMessage{msg},
		})
	}

	for _, m := range bucket.Messages {
		if m.ID == msg.ID {
			return nil // 重送的同一則訊息
		}
	}
	bucket.Messages = append(bucket.Messages, msg)
	return uc.msgRepo.UpdateBucket(ctx, bucket)
}

// Delete 刪除自己發的訊息並廣播 message_deleted
func (uc *MessageUseCase) Delete(ctx context.Context, userID, chatID, messageID string) error {
	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return ErrChatNotFound
	}
	if !pkg.Contains(chat.Participants, userID) {
		return ErrNotParticipant
	}

	bucket, err := uc.msgRepo.FindBucketWithMessage(ctx, chatID, messageID)
	if err != nil || bucket == nil {
		return errors.New("message not found")
	}

	var target *domain.ChatMessage
	for i := range bucket.Messages {
		if bucket.Messages[i].ID == messageID {
			target = &bucket.Messages[i]
			break
		}
	}
	if target == nil {
		return errors.New("message not found")
	}
	if target.SenderID != userID {
		return ErrNotMessageOwner
	}

	if err := uc.msgRepo.RemoveMessage(ctx, chatID, bucket.Date, messageID); err != nil {
		return err
	}

	// 附件跟著訊息一起清
	if target.Attachment != "" && uc.attachmentRepo != nil {
		if err := uc.attachmentRepo.Remove(ctx, target.Attachment); err != nil {
			logger.Log.Errorf("remove attachment error:", err)
		}
	}

	ev := domain.RealtimeEvent{
		Event:     domain.EventMessageDeleted,
		ChatID:    chatID,
		SenderID:  userID,
		MessageID: messageID,
	}
	for _, p := range chat.Participants {
		if p == userID {
			continue
		}
		if err := uc.pub.Publish(repository.UserChannelPrefix+p, ev); err != nil {
			logger.Log.Errorf("publish error:", err)
		}
	}
	if uc.stream != nil {
		if err := uc.stream.Append(ctx, chatID, ev); err != nil {
			logger.Log.Errorf("event stream append error:", err)
		}
	}
	return nil
}

// MarkRead 標記已讀
// read_by 只增不減；重複標記是 no-op，不重複廣播。
// messageIDs 為空時把該用戶最早未讀桶整桶標掉。
func (uc *MessageUseCase) MarkRead(ctx context.Context, userID, chatID string, messageIDs []string) error {
	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return ErrChatNotFound
	}
	if !pkg.Contains(chat.Participants, userID) {
		return ErrNotParticipant
	}

	bucket, err := uc.msgRepo.FindEarliestUnread(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if bucket == nil {
		return nil // 沒有未讀，冪等
	}

	markAll := len(messageIDs) == 0
	var marked []string
	for i := range bucket.Messages {
		m := &bucket.Messages[i]
		if !markAll && !pkg.Contains(messageIDs, m.ID) {
			continue
		}
		if pkg.Contains(m.ReadBy, userID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, userID)
		marked = append(marked, m.ID)
	}

	if len(marked) == 0 {
		return nil
	}

	if err := uc.msgRepo.UpdateBucket(ctx, bucket); err != nil {
		return err
	}

	ev := domain.RealtimeEvent{
		Event:      domain.EventMessagesRead,
		ChatID:     chatID,
		ReaderID:   userID,
		MessageIDs: marked,
	}
	for _, p := range chat.Participants {
		if p == userID {
			continue
		}
		if err := uc.pub.Publish(repository.UserChannelPrefix+p, ev); err != nil {
			logger.Log.Errorf("publish error:", err)
		}
	}
	return nil
}

// ActiveTypers 目前還在打字的其他人，進房時用來補畫面初值
func (uc *MessageUseCase) ActiveTypers(ctx context.Context, userID, chatID string) (map[string]string, error) {
	typers, err := uc.typingRepo.ActiveTypers(ctx, chatID)
	if err != nil {
		return nil, err
	}
	delete(typers, userID)
	return typers, nil
}

// StartTyping 觸發 typing 指示
// SETNX 成功才廣播，同一個 quiet period 內後續按鍵只延長 TTL 不重播
func (uc *MessageUseCase) StartTyping(ctx context.Context, userID, displayName, chatID string) error {
	started, err := uc.typingRepo.StartTyping(ctx, chatID, userID, displayName)
	if err != nil {
		return err
	}
	if !started {
		return uc.typingRepo.RefreshTyping(ctx, chatID, userID)
	}

	return uc.pub.Publish(repository.ChatChannelPrefix+chatID, domain.RealtimeEvent{
		Event:      domain.EventUserTyping,
		ChatID:     chatID,
		SenderID:   userID,
		SenderName: displayName,
	})
}

// StopTyping 清除 typing 狀態並廣播
func (uc *MessageUseCase) StopTyping(ctx context.Context, userID, chatID string) error {
	if err := uc.typingRepo.StopTyping(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.pub.Publish(repository.ChatChannelPrefix+chatID, domain.RealtimeEvent{
		Event:    domain.EventUserStoppedTyping,
		ChatID:   chatID,
		SenderID: userID,
	})
}

// UploadAttachment 存入附件，回傳 object name 供 Send 夾帶
func (uc *MessageUseCase) UploadAttachment(ctx context.Context, userID, chatID string, reader io.Reader, size int64, contentType string) (string, error) {
	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return "", ErrChatNotFound
	}
	if !pkg.Contains(chat.Participants, userID) {
		return "", ErrNotParticipant
	}
	return uc.attachmentRepo.Upload(ctx, chatID, reader, size, contentType)
}

// AttachmentURL 換取 presigned 下載連結
func (uc *MessageUseCase) AttachmentURL(ctx context.Context, objectName string) (string, error) {
	return uc.attachmentRepo.PresignGet(ctx, objectName)
}
