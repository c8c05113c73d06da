package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"social_network_service/internal/chat/domain"
	"social_network_service/internal/chat/repository"
	"social_network_service/pkg"
	"social_network_service/pkg/logger"

	"go.uber.org/zap"
)

// FollowService - chat service 需要的 follow graph 查詢，由 member usecase 實作
type FollowService interface {
	ListFollowing(ctx context.Context, userID string) ([]string, error)
	Follow(ctx context.Context, userID, targetID string) error
}

// ChatOverview LoadInitial 的結果：分好桶的清單與未讀數
type ChatOverview struct {
	Active   []*domain.Chat
	Requests []*domain.Chat
	Unread   []domain.ChatUnreadInfo
}

// ChatListUseCase 負責聊天清單與 request 生命週期
type ChatListUseCase struct {
	chatRepo     repository.ChatRepository
	requestRepo  repository.RequestRepository
	decisionRepo repository.DecisionRepository
	msgRepo      repository.MessageRepository
	followSvc    FollowService
	pub          repository.EventPublisher
	stream       repository.EventStream
}

// NewChatListUseCase init chat list use case
func NewChatListUseCase(
	chatRepo repository.ChatRepository,
	requestRepo repository.RequestRepository,
	decisionRepo repository.DecisionRepository,
	msgRepo repository.MessageRepository,
	followSvc FollowService,
	pub repository.EventPublisher,
	stream repository.EventStream,
) *ChatListUseCase {
	return &ChatListUseCase{
		chatRepo:     chatRepo,
		requestRepo:  requestRepo,
		decisionRepo: decisionRepo,
		msgRepo:      msgRepo,
		followSvc:    followSvc,
		pub:          pub,
		stream:       stream,
	}
}

// LoadInitial 並行撈取 active chats 與 pending requests，
// 套用 decision cache 與 following list 分桶後按 last_activity 降冪
func (uc *ChatListUseCase) LoadInitial(ctx context.Context, userID string) (*ChatOverview, error) {
	var (
		wg         sync.WaitGroup
		active     []*domain.Chat
		pending    []*domain.Chat
		unread     []domain.ChatUnreadInfo
		activeErr  error
		pendingErr error
		unreadErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		active, activeErr = uc.chatRepo.FindByParticipant(ctx, userID, domain.ChatStatusActive)
	}()
	go func() {
		defer wg.Done()
		pending, pendingErr = uc.chatRepo.FindByParticipant(ctx, userID, domain.ChatStatusPending)
	}()
	go func() {
		defer wg.Done()
		unread, unreadErr = uc.msgRepo.CountUnreadMessagesByChat(ctx, userID)
	}()
	wg.Wait()

	if activeErr != nil {
		return nil, activeErr
	}
	if pendingErr != nil {
		return nil, pendingErr
	}
	if unreadErr != nil {
		// 未讀數拿不到不阻斷清單載入
		logger.Log.Warn("load unread counts failed", zap.String("userID", userID), zap.Error(unreadErr))
		unread = nil
	}

	decisions, err := uc.decisionRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	following, err := uc.followSvc.ListFollowing(ctx, userID)
	if err != nil {
		logger.Log.Warn("load following failed", zap.String("userID", userID), zap.Error(err))
		following = nil
	}

	all := append(active, pending...)
	activeBucket, requestBucket := Categorize(all, userID, decisions, following)

	sortChatsByActivity(activeBucket)
	sortChatsByActivity(requestBucket)

	return &ChatOverview{
		Active:   activeBucket,
		Requests: requestBucket,
		Unread:   unread,
	}, nil
}

// Categorize 純函式分桶：
//   - cached accepted 一律進 active
//   - cached declined 整個丟棄
//   - viewer 已 follow 發起人的 pending chat 視同 active
//   - 其餘依伺服器狀態
//
// 不變量：每個 chat 恰好落在 active/request 其中一桶，或被丟棄
func Categorize(all []*domain.Chat, viewerID string, decisions map[string]domain.RequestDecision, following []string) (active, requests []*domain.Chat) {
	for _, chat := range all {
		switch decisions[chat.ID] {
		case domain.DecisionAccepted:
			active = append(active, chat)
			continue
		case domain.DecisionDeclined:
			continue
		}

		if chat.Status == domain.ChatStatusDeclined {
			continue
		}

		if chat.IsRequestFor(viewerID) {
			if pkg.Contains(following, chat.InitiatorID) {
				active = append(active, chat)
			} else {
				requests = append(requests, chat)
			}
			continue
		}

		active = append(active, chat)
	}
	return active, requests
}

// AcceptRequest 接受 message request
// decision cache 先落地再打後端，失敗不回滾本地決定（下一次 resync 收斂）
func (uc *ChatListUseCase) AcceptRequest(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, errors.New("chat not found")
	}
	if !pkg.Contains(chat.Participants, userID) {
		return nil, errors.New("not a participant")
	}

	if err := uc.decisionRepo.Save(ctx, userID, chatID, domain.DecisionAccepted); err != nil {
		return nil, err
	}

	// 已經 active 時重複 accept 是 no-op
	if chat.Status == domain.ChatStatusActive {
		return chat, nil
	}

	if err := uc.requestRepo.UpdateRequestStatus(ctx, chatID, domain.RequestAccepted); err != nil {
		return nil, err
	}
	if err := uc.chatRepo.UpdateStatus(ctx, chatID, domain.ChatStatusActive); err != nil {
		return nil, err
	}
	chat.Status = domain.ChatStatusActive

	// accept 附帶 follow 發起人，失敗只記錄
	if uc.followSvc != nil && chat.InitiatorID != "" {
		if err := uc.followSvc.Follow(ctx, userID, chat.InitiatorID); err != nil {
			logger.Log.Warn("follow on accept failed",
				zap.String("userID", userID),
				zap.String("target", chat.InitiatorID),
				zap.Error(err),
			)
		}
	}

	uc.broadcast(ctx, chat, domain.RealtimeEvent{
		Event:    domain.EventRequestAccepted,
		ChatID:   chatID,
		SenderID: userID,
	})

	return chat, nil
}

// DeclineRequest 拒絕 message request，chat 從所有清單移除
func (uc *ChatListUseCase) DeclineRequest(ctx context.Context, userID, chatID string) error {
	// 之前已拒絕過：冪等，不再動後端也不再廣播
	if d, ok, err := uc.decisionRepo.Get(ctx, userID, chatID); err == nil && ok && d == domain.DecisionDeclined {
		return nil
	}

	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return errors.New("chat not found")
	}
	if !pkg.Contains(chat.Participants, userID) {
		return errors.New("not a participant")
	}

	// active chat 沒有通往 discarded 的路，晚到的 decline 不能拆掉已接受的對話
	if chat.Status == domain.ChatStatusActive {
		return nil
	}

	if err := uc.decisionRepo.Save(ctx, userID, chatID, domain.DecisionDeclined); err != nil {
		return err
	}

	if chat.Status == domain.ChatStatusDeclined {
		return nil
	}

	if err := uc.requestRepo.UpdateRequestStatus(ctx, chatID, domain.RequestDeclined); err != nil {
		return err
	}
	if err := uc.chatRepo.UpdateStatus(ctx, chatID, domain.ChatStatusDeclined); err != nil {
		return err
	}
	chat.Status = domain.ChatStatusDeclined

	uc.broadcast(ctx, chat, domain.RealtimeEvent{
		Event:    domain.EventRequestDeclined,
		ChatID:   chatID,
		SenderID: userID,
	})

	return nil
}

// OpenDirectChat 首次聯繫：已有 direct chat 就回傳，否則建立 pending chat + request
func (uc *ChatListUseCase) OpenDirectChat(ctx context.Context, initiatorID, recipientID string, newID func() string, now func() int64) (*domain.Chat, error) {
	if initiatorID == recipientID {
		return nil, errors.New("cannot open chat with yourself")
	}

	// 查不到才建新 chat，查詢失敗要回報，不能當成不存在而建出重複的 chat
	exist, err := uc.chatRepo.FindOneDirectChat(ctx, initiatorID, recipientID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if exist != nil {
		return exist, nil
	}

	status := domain.ChatStatusPending
	// 收件人已 follow 發起人時直接開 active chat
	following, err := uc.followSvc.ListFollowing(ctx, recipientID)
	if err == nil && pkg.Contains(following, initiatorID) {
		status = domain.ChatStatusActive
	}

	chat := &domain.Chat{
		ID:           newID(),
		ChatType:     domain.ChatTypeDirect,
		Participants: []string{initiatorID, recipientID},
		InitiatorID:  initiatorID,
		Status:       status,
		LastActivity: now(),
		CreatedAt:    now(),
	}
	if err := uc.chatRepo.CreateChat(ctx, chat); err != nil {
		return nil, err
	}

	if status == domain.ChatStatusPending {
		req := &domain.ChatRequest{
			ID:          newID(),
			ChatID:      chat.ID,
			InitiatorID: initiatorID,
			RecipientID: recipientID,
			Status:      domain.RequestPending,
			CreatedAt:   now(),
		}
		if err := uc.requestRepo.CreateRequest(ctx, req); err != nil {
			return nil, err
		}
	}

	return chat, nil
}

// GetUnread get user all chat unread counts
func (uc *ChatListUseCase) GetUnread(ctx context.Context, userID string) ([]domain.ChatUnreadInfo, error) {
	return uc.msgRepo.CountUnreadMessagesByChat(ctx, userID)
}

// broadcast fan-out 給 chat 所有參與者並寫入事件流
func (uc *ChatListUseCase) broadcast(ctx context.Context, chat *domain.Chat, ev domain.RealtimeEvent) {
	if uc.pub != nil {
		for _, p := range chat.Participants {
			if err := uc.pub.Publish(repository.UserChannelPrefix+p, ev); err != nil {
				logger.Log.Errorf("publish error:", err)
			}
		}
	}
	if uc.stream != nil {
		if err := uc.stream.Append(ctx, chat.ID, ev); err != nil {
			logger.Log.Errorf("event stream append error:", err)
		}
	}
}

func sortChatsByActivity(chats []*domain.Chat) {
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastActivity > chats[j].LastActivity
	})
}
