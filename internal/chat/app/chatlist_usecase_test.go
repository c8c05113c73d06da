package app

import (
	"context"
	"testing"

	"social_network_service/internal/chat/domain"
	"social_network_service/internal/chat/repository"
	"social_network_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試 LoadInitial 分桶
func TestChatListUseCase_LoadInitial(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	userID := uuid.New().String()

	activeChat := &domain.Chat{
		ID:           "chat-active",
		ChatType:     domain.ChatTypeDirect,
		Participants: []string{userID, "friend-1"},
		Status:       domain.ChatStatusActive,
		LastActivity: 100,
	}
	pendingChat := &domain.Chat{
		ID:           "chat-pending",
		ChatType:     domain.ChatTypeDirect,
		Participants: []string{userID, "stranger-1"},
		InitiatorID:  "stranger-1",
		Status:       domain.ChatStatusPending,
		LastActivity: 200,
	}

	mockChatRepo := new(MockChatRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockDecisionRepo := new(MockDecisionRepository)
	mockFollow := new(MockFollowService)

	mockChatRepo.On("FindByParticipant", ctx, userID, domain.ChatStatusActive).Return([]*domain.Chat{activeChat}, nil)
	mockChatRepo.On("FindByParticipant", ctx, userID, domain.ChatStatusPending).Return([]*domain.Chat{pendingChat}, nil)
	mockMsgRepo.On("CountUnreadMessagesByChat", ctx, userID).Return([]domain.ChatUnreadInfo{
		{ChatID: "chat-active", UnreadCount: 3},
	}, nil)
	mockDecisionRepo.On("Load", ctx, userID).Return(map[string]domain.RequestDecision{}, nil)
	mockFollow.On("ListFollowing", ctx, userID).Return([]string{}, nil)

	uc := NewChatListUseCase(mockChatRepo, nil, mockDecisionRepo, mockMsgRepo, mockFollow, nil, nil)
	overview, err := uc.LoadInitial(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, overview.Active, 1)
	assert.Len(t, overview.Requests, 1)
	assert.Equal(t, "chat-active", overview.Active[0].ID)
	assert.Equal(t, "chat-pending", overview.Requests[0].ID)
	assert.Equal(t, 3, overview.Unread[0].UnreadCount)

	mockChatRepo.AssertExpectations(t)
	mockDecisionRepo.AssertExpectations(t)
}

// 測試分桶規則：decision cache 與 follow graph 優先於伺服器狀態
func TestCategorize(t *testing.T) {
	viewer := "viewer-1"

	cachedAccepted := &domain.Chat{ID: "c1", InitiatorID: "a", Status: domain.ChatStatusPending}
	cachedDeclined := &domain.Chat{ID: "c2", InitiatorID: "b", Status: domain.ChatStatusPending}
	followedInitiator := &domain.Chat{ID: "c3", InitiatorID: "friend", Status: domain.ChatStatusPending}
	plainRequest := &domain.Chat{ID: "c4", InitiatorID: "stranger", Status: domain.ChatStatusPending}
	ownPending := &domain.Chat{ID: "c5", InitiatorID: viewer, Status: domain.ChatStatusPending}
	serverDeclined := &domain.Chat{ID: "c6", InitiatorID: "x", Status: domain.ChatStatusDeclined}
	normal := &domain.Chat{ID: "c7", Status: domain.ChatStatusActive}

	decisions := map[string]domain.RequestDecision{
		"c1": domain.DecisionAccepted,
		"c2": domain.DecisionDeclined,
	}
	following := []string{"friend"}

	active, requests := Categorize(
		[]*domain.Chat{cachedAccepted, cachedDeclined, followedInitiator, plainRequest, ownPending, serverDeclined, normal},
		viewer, decisions, following,
	)

	activeIDs := make([]string, 0, len(active))
	for _, c := range active {
		activeIDs = append(activeIDs, c.ID)
	}
	requestIDs := make([]string, 0, len(requests))
	for _, c := range requests {
		requestIDs = append(requestIDs, c.ID)
	}

	// cached accepted、followed initiator、自己發起的 pending、普通 active 都在 active 桶
	assert.ElementsMatch(t, []string{"c1", "c3", "c5", "c7"}, activeIDs)
	// 只有陌生人發起且無 cache 的 pending 留在 request 桶
	assert.ElementsMatch(t, []string{"c4"}, requestIDs)
}

// 測試 AcceptRequest：decision 先落地、後端全更新、雙方收到事件
func TestChatListUseCase_AcceptRequest(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	userID := "recipient-1"
	chatID := uuid.New().String()

	chat := &domain.Chat{
		ID:           chatID,
		ChatType:     domain.ChatTypeDirect,
		Participants: []string{"initiator-1", userID},
		InitiatorID:  "initiator-1",
		Status:       domain.ChatStatusPending,
	}

	mockChatRepo := new(MockChatRepository)
	mockRequestRepo := new(MockRequestRepository)
	mockDecisionRepo := new(MockDecisionRepository)
	mockFollow := new(MockFollowService)
	mockPub := new(MockEventPublisher)
	mockStream := new(MockEventStream)

	mockChatRepo.On("FindByID", ctx, chatID).Return(chat, nil)
	mockDecisionRepo.On("Save", ctx, userID, chatID, domain.DecisionAccepted).Return(nil)
	mockRequestRepo.On("UpdateRequestStatus", ctx, chatID, domain.RequestAccepted).Return(nil)
	mockChatRepo.On("UpdateStatus", ctx, chatID, domain.ChatStatusActive).Return(nil)
	mockFollow.On("Follow", ctx, userID, "initiator-1").Return(nil)
	mockPub.On("Publish", repository.UserChannelPrefix+"initiator-1", mock.Anything).Return(nil)
	mockPub.On("Publish", repository.UserChannelPrefix+userID, mock.Anything).Return(nil)
	mockStream.On("Append", ctx, chatID, mock.Anything).Return(nil)

	uc := NewChatListUseCase(mockChatRepo, mockRequestRepo, mockDecisionRepo, nil, mockFollow, mockPub, mockStream)
	got, err := uc.AcceptRequest(ctx, userID, chatID)

	assert.NoError(t, err)
	assert.Equal(t, domain.ChatStatusActive, got.Status)

	mockChatRepo.AssertExpectations(t)
	mockRequestRepo.AssertExpectations(t)
	mockDecisionRepo.AssertExpectations(t)
	mockFollow.AssertExpectations(t)
	mockPub.AssertExpectations(t)
	mockStream.AssertExpectations(t)
}

// 重複 accept 已 active 的 chat 是 no-op，只刷新 decision cache
func TestChatListUseCase_AcceptRequest_Idempotent(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	userID := "recipient-1"
	chatID := uuid.New().String()

	chat := &domain.Chat{
		ID:           chatID,
		Participants: []string{"initiator-1", userID},
		InitiatorID:  "initiator-1",
		Status:       domain.ChatStatusActive,
	}

	mockChatRepo := new(MockChatRepository)
	mockRequestRepo := new(MockRequestRepository)
	mockDecisionRepo := new(MockDecisionRepository)

	mockChatRepo.On("FindByID", ctx, chatID).Return(chat, nil)
	mockDecisionRepo.On("Save", ctx, userID, chatID, domain.DecisionAccepted).Return(nil)

	uc := NewChatListUseCase(mockChatRepo, mockRequestRepo, mockDecisionRepo, nil, nil, nil, nil)
	got, err := uc.AcceptRequest(ctx, userID, chatID)

	assert.NoError(t, err)
	assert.Equal(t, domain.ChatStatusActive, got.Status)
	mockRequestRepo.AssertNotCalled(t, "UpdateRequestStatus", mock.Anything, mock.Anything, mock.Anything)
	mockChatRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// 測試 DeclineRequest
func TestChatListUseCase_DeclineRequest(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	userID := "recipient-1"
	chatID := uuid.New().String()

	chat := &domain.Chat{
		ID:           chatID,
		Participants: []string{"initiator-1", userID},
		InitiatorID:  "initiator-1",
		Status:       domain.ChatStatusPending,
	}

	mockChatRepo := new(MockChatRepository)
	mockRequestRepo := new(MockRequestRepository)
	mockDecisionRepo := new(MockDecisionRepository)
	mockPub := new(MockEventPublisher)
	mockStream := new(MockEventStream)

	mockDecisionRepo.On("Get", ctx, userID, chatID).Return(domain.RequestDecision(""), false, nil)
	mockChatRepo.On("FindByID", ctx, chatID).Return(chat, nil)
	mockDecisionRepo.On("Save", ctx, userID, chatID, domain.DecisionDeclined).Return(nil)
	mockRequestRepo.On("UpdateRequestStatus", ctx, chatID, domain.RequestDeclined).Return(nil)
	mockChatRepo.On("UpdateStatus", ctx, chatID, domain.ChatStatusDeclined).Return(nil)
	mockPub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	mockStream.On("Append", ctx, chatID, mock.Anything).Return(nil)

	uc := NewChatListUseCase(mockChatRepo, mockRequestRepo, mockDecisionRepo, nil, nil, mockPub, mockStream)
	err := uc.DeclineRequest(ctx, userID, chatID)

	assert.NoError(t, err)
	mockChatRepo.AssertExpectations(t)
	mockRequestRepo.AssertExpectations(t)
	mockDecisionRepo.AssertExpectations(t)
}

// active chat 不會被晚到的 decline 拆掉，decision cache 也不被覆寫
func TestChatListUseCase_DeclineRequest_ActiveNoop(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	userID := "recipient-1"
	chatID := uuid.New().String()

	chat := &domain.Chat{
		ID:           chatID,
		Participants: []string{"initiator-1", userID},
		InitiatorID:  "initiator-1",
		Status:       domain.ChatStatusActive,
	}

	mockChatRepo := new(MockChatRepository)
	mockRequestRepo := new(MockRequestRepository)
	mockDecisionRepo := new(MockDecisionRepository)

	mockDecisionRepo.On("Get", ctx, userID, chatID).Return(domain.RequestDecision(""), false, nil)
	mockChatRepo.On("FindByID", ctx, chatID).Return(chat, nil)

	uc := NewChatListUseCase(mockChatRepo, mockRequestRepo, mockDecisionRepo, nil, nil, nil, nil)
	err := uc.DeclineRequest(ctx, userID, chatID)

	assert.NoError(t, err)
	assert.Equal(t, domain.ChatStatusActive, chat.Status)
	mockDecisionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRequestRepo.AssertNotCalled(t, "UpdateRequestStatus", mock.Anything, mock.Anything, mock.Anything)
	mockChatRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// 重複 decline 直接吃 decision cache，不再查 chat 也不再廣播
func TestChatListUseCase_DeclineRequest_AlreadyDeclined(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	userID := "recipient-1"
	chatID := uuid.New().String()

	mockChatRepo := new(MockChatRepository)
	mockDecisionRepo := new(MockDecisionRepository)

	mockDecisionRepo.On("Get", ctx, userID, chatID).Return(domain.DecisionDeclined, true, nil)

	uc := NewChatListUseCase(mockChatRepo, nil, mockDecisionRepo, nil, nil, nil, nil)
	err := uc.DeclineRequest(ctx, userID, chatID)

	assert.NoError(t, err)
	mockChatRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	mockDecisionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 非參與者不能 accept
func TestChatListUseCase_AcceptRequest_NotParticipant(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	chat := &domain.Chat{
		ID:           chatID,
		Participants: []string{"a", "b"},
		InitiatorID:  "a",
		Status:       domain.ChatStatusPending,
	}

	mockChatRepo := new(MockChatRepository)
	mockDecisionRepo := new(MockDecisionRepository)
	mockChatRepo.On("FindByID", ctx, chatID).Return(chat, nil)

	uc := NewChatListUseCase(mockChatRepo, nil, mockDecisionRepo, nil, nil, nil, nil)
	_, err := uc.AcceptRequest(ctx, "outsider", chatID)

	assert.Error(t, err)
	mockDecisionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 測試 OpenDirectChat：陌生人發起為 pending 並建 request
func TestChatListUseCase_OpenDirectChat(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)
	mockRequestRepo := new(MockRequestRepository)
	mockFollow := new(MockFollowService)

	mockChatRepo.On("FindOneDirectChat", ctx, "alice", "bob").Return(nil, repository.ErrNotFound)
	mockFollow.On("ListFollowing", ctx, "bob").Return([]string{}, nil)
	mockChatRepo.On("CreateChat", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
		return c.Status == domain.ChatStatusPending && c.InitiatorID == "alice"
	})).Return(nil)
	mockRequestRepo.On("CreateRequest", ctx, mock.MatchedBy(func(r *domain.ChatRequest) bool {
		return r.InitiatorID == "alice" && r.RecipientID == "bob" && r.Status == domain.RequestPending
	})).Return(nil)

	uc := NewChatListUseCase(mockChatRepo, mockRequestRepo, nil, nil, mockFollow, nil, nil)

	n := 0
	newID := func() string { n++; return uuid.New().String() }
	now := func() int64 { return 1700000000 }

	chat, err := uc.OpenDirectChat(ctx, "alice", "bob", newID, now)

	assert.NoError(t, err)
	assert.Equal(t, domain.ChatStatusPending, chat.Status)
	mockRequestRepo.AssertExpectations(t)
}

// 收件人已 follow 發起人時直接開 active chat，不建 request
func TestChatListUseCase_OpenDirectChat_Followed(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)
	mockRequestRepo := new(MockRequestRepository)
	mockFollow := new(MockFollowService)

	mockChatRepo.On("FindOneDirectChat", ctx, "alice", "bob").Return(nil, repository.ErrNotFound)
	mockFollow.On("ListFollowing", ctx, "bob").Return([]string{"alice"}, nil)
	mockChatRepo.On("CreateChat", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
		return c.Status == domain.ChatStatusActive
	})).Return(nil)

	uc := NewChatListUseCase(mockChatRepo, mockRequestRepo, nil, nil, mockFollow, nil, nil)

	chat, err := uc.OpenDirectChat(ctx, "alice", "bob",
		func() string { return uuid.New().String() },
		func() int64 { return 1700000000 },
	)

	assert.NoError(t, err)
	assert.Equal(t, domain.ChatStatusActive, chat.Status)
	mockRequestRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
}

// 查詢失敗要回報，不能當成不存在而建出重複的 chat
func TestChatListUseCase_OpenDirectChat_LookupError(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)

	mockChatRepo.On("FindOneDirectChat", ctx, "alice", "bob").Return(nil, assert.AnError)

	uc := NewChatListUseCase(mockChatRepo, nil, nil, nil, nil, nil, nil)
	_, err := uc.OpenDirectChat(ctx, "alice", "bob",
		func() string { return uuid.New().String() },
		func() int64 { return 1700000000 },
	)

	assert.ErrorIs(t, err, assert.AnError)
	mockChatRepo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
}
