package app

import (
	"context"
	"testing"

	"social_network_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func newTestSession(userID string) *ChatSession {
	s := NewChatSession(userID)
	s.ResetLists(&ChatOverview{
		Active: []*domain.Chat{
			{ID: "chat-a", Status: domain.ChatStatusActive, Participants: []string{userID, "friend"}},
		},
		Requests: []*domain.Chat{
			{ID: "chat-r", Status: domain.ChatStatusPending, InitiatorID: "stranger", Participants: []string{userID, "stranger"}},
		},
		Unread: []domain.ChatUnreadInfo{{ChatID: "chat-a", UnreadCount: 2}},
	})
	return s
}

// 同一則訊息重複送達只會出現一次
func TestChatSession_DuplicateMessage(t *testing.T) {
	s := newTestSession("me")
	s.OpenChat("chat-a", nil)

	msg := &domain.ChatMessage{ID: "m1", ChatID: "chat-a", SenderID: "friend", Content: "hi"}
	ev := domain.RealtimeEvent{Event: domain.EventNewMessage, ChatID: "chat-a", SenderID: "friend", Message: msg}

	forward, _ := s.Apply(ev)
	assert.True(t, forward)
	forward, _ = s.Apply(ev)
	assert.True(t, forward)

	assert.Len(t, s.Messages(), 1)
}

// 開著的 chat 未讀恆為 0；關著的 chat 本地 +1
func TestChatSession_UnreadCounting(t *testing.T) {
	s := newTestSession("me")

	// 關著：resync 給的 2，再來一則變 3
	ev := domain.RealtimeEvent{
		Event:   domain.EventNewMessage,
		ChatID:  "chat-a",
		Message: &domain.ChatMessage{ID: "m1", ChatID: "chat-a", SenderID: "friend"},
	}
	s.Apply(ev)
	assert.Equal(t, 3, s.Unread("chat-a"))

	// 伺服器有附 count 時以伺服器為準
	seven := 7
	s.Apply(domain.RealtimeEvent{
		Event:       domain.EventNewMessage,
		ChatID:      "chat-a",
		Message:     &domain.ChatMessage{ID: "m2", ChatID: "chat-a", SenderID: "friend"},
		UnreadCount: &seven,
	})
	assert.Equal(t, 7, s.Unread("chat-a"))

	// 打開後歸零且不再累計
	s.OpenChat("chat-a", nil)
	assert.Equal(t, 0, s.Unread("chat-a"))
	s.Apply(domain.RealtimeEvent{
		Event:   domain.EventNewMessage,
		ChatID:  "chat-a",
		Message: &domain.ChatMessage{ID: "m3", ChatID: "chat-a", SenderID: "friend"},
	})
	assert.Equal(t, 0, s.Unread("chat-a"))
}

// 本地不認得的 chat 觸發 full reload
func TestChatSession_UnknownChatTriggersReload(t *testing.T) {
	s := newTestSession("me")

	forward, needReload := s.Apply(domain.RealtimeEvent{
		Event:   domain.EventNewMessage,
		ChatID:  "chat-unknown",
		Message: &domain.ChatMessage{ID: "m1", ChatID: "chat-unknown", SenderID: "x"},
	})

	assert.False(t, forward)
	assert.True(t, needReload)
	assert.True(t, s.NeedReload())
	// 旗標讀過即清
	assert.False(t, s.NeedReload())
}

// accept 把 chat 從 request 桶移到 active 桶，恰好一次
func TestChatSession_AcceptMovesOnce(t *testing.T) {
	s := newTestSession("me")

	assert.Equal(t, domain.StatePending, s.State("chat-r"))

	ev := domain.RealtimeEvent{Event: domain.EventRequestAccepted, ChatID: "chat-r", SenderID: "me"}
	forward, _ := s.Apply(ev)
	assert.True(t, forward)
	assert.Equal(t, domain.StateActive, s.State("chat-r"))

	// 重複 accept 冪等
	forward, _ = s.Apply(ev)
	assert.True(t, forward)
	assert.Equal(t, domain.StateActive, s.State("chat-r"))
}

// decline 後 chat 進入吸收態，之後的事件全部 no-op
func TestChatSession_DeclineIsAbsorbing(t *testing.T) {
	s := newTestSession("me")

	forward, _ := s.Apply(domain.RealtimeEvent{Event: domain.EventRequestDeclined, ChatID: "chat-r"})
	assert.True(t, forward)
	assert.Equal(t, domain.StateDiscarded, s.State("chat-r"))

	// 之後的新訊息、accept 都不會讓它回來
	forward, needReload := s.Apply(domain.RealtimeEvent{
		Event:   domain.EventNewMessage,
		ChatID:  "chat-r",
		Message: &domain.ChatMessage{ID: "m9", ChatID: "chat-r", SenderID: "stranger"},
	})
	assert.False(t, forward)
	assert.False(t, needReload)

	forward, _ = s.Apply(domain.RealtimeEvent{Event: domain.EventRequestAccepted, ChatID: "chat-r"})
	assert.False(t, forward)
	assert.Equal(t, domain.StateDiscarded, s.State("chat-r"))
	assert.Equal(t, 0, s.Unread("chat-r"))
}

// active chat 不受 decline 影響
func TestChatSession_DeclineActiveNoop(t *testing.T) {
	s := newTestSession("me")

	forward, _ := s.Apply(domain.RealtimeEvent{Event: domain.EventRequestDeclined, ChatID: "chat-a"})
	assert.False(t, forward)
	assert.Equal(t, domain.StateActive, s.State("chat-a"))
}

// read_by 只增不減
func TestChatSession_ReadByMonotonic(t *testing.T) {
	s := newTestSession("me")
	s.OpenChat("chat-a", []domain.ChatMessage{
		{ID: "m1", ChatID: "chat-a", SenderID: "me", ReadBy: []string{"me"}},
	})

	ev := domain.RealtimeEvent{
		Event:      domain.EventMessagesRead,
		ChatID:     "chat-a",
		ReaderID:   "friend",
		MessageIDs: []string{"m1"},
	}
	s.Apply(ev)
	assert.ElementsMatch(t, []string{"me", "friend"}, s.Messages()[0].ReadBy)

	// 重複已讀事件不重複追加
	s.Apply(ev)
	assert.Len(t, s.Messages()[0].ReadBy, 2)
}

// message_deleted 從開著的緩衝移除
func TestChatSession_MessageDeleted(t *testing.T) {
	s := newTestSession("me")
	s.OpenChat("chat-a", []domain.ChatMessage{
		{ID: "m1", ChatID: "chat-a", SenderID: "friend"},
		{ID: "m2", ChatID: "chat-a", SenderID: "friend"},
	})

	s.Apply(domain.RealtimeEvent{Event: domain.EventMessageDeleted, ChatID: "chat-a", MessageID: "m1"})

	msgs := s.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, "m2", msgs[0].ID)
}

// typing 只在開著的 chat 顯示，自己的 typing 不顯示
func TestChatSession_TypingScope(t *testing.T) {
	s := newTestSession("me")
	s.OpenChat("chat-a", nil)

	// 別的 chat 的 typing 不顯示
	forward, _ := s.Apply(domain.RealtimeEvent{Event: domain.EventUserTyping, ChatID: "chat-r", SenderID: "stranger", SenderName: "Stranger"})
	assert.False(t, forward)

	// 自己的 typing 不顯示
	forward, _ = s.Apply(domain.RealtimeEvent{Event: domain.EventUserTyping, ChatID: "chat-a", SenderID: "me", SenderName: "Me"})
	assert.False(t, forward)

	forward, _ = s.Apply(domain.RealtimeEvent{Event: domain.EventUserTyping, ChatID: "chat-a", SenderID: "friend", SenderName: "Friend"})
	assert.True(t, forward)
	assert.Equal(t, map[string]string{"friend": "Friend"}, s.Typers())

	// stop 事件立即清掉
	forward, _ = s.Apply(domain.RealtimeEvent{Event: domain.EventUserStoppedTyping, ChatID: "chat-a", SenderID: "friend"})
	assert.True(t, forward)
	assert.Empty(t, s.Typers())

	// 已經不在 typing 的人再收到 stop 是 no-op
	forward, _ = s.Apply(domain.RealtimeEvent{Event: domain.EventUserStoppedTyping, ChatID: "chat-a", SenderID: "friend"})
	assert.False(t, forward)
}

// resync 整包換掉本地清單，開著的 chat 未讀仍為 0
func TestChatSession_ResetLists(t *testing.T) {
	s := newTestSession("me")
	s.OpenChat("chat-a", nil)

	s.ResetLists(&ChatOverview{
		Active: []*domain.Chat{
			{ID: "chat-a", Status: domain.ChatStatusActive},
			{ID: "chat-b", Status: domain.ChatStatusActive},
		},
		Unread: []domain.ChatUnreadInfo{
			{ChatID: "chat-a", UnreadCount: 5},
			{ChatID: "chat-b", UnreadCount: 1},
		},
	})

	assert.Equal(t, 0, s.Unread("chat-a")) // 開著的 chat 不吃 resync count
	assert.Equal(t, 1, s.Unread("chat-b"))
	assert.Equal(t, domain.StateUnknown, s.State("chat-r")) // 舊 request 已被換掉
}

// 本地決定立即反映，不等伺服器事件
func TestChatSession_ApplyLocalDecision(t *testing.T) {
	s := newTestSession("me")

	s.ApplyLocalDecision("chat-r", domain.DecisionAccepted)
	assert.Equal(t, domain.StateActive, s.State("chat-r"))

	s2 := newTestSession("me")
	s2.ApplyLocalDecision("chat-r", domain.DecisionDeclined)
	assert.Equal(t, domain.StateDiscarded, s2.State("chat-r"))
}

// 房間訂閱跟著各自的連線走，別條連線進房不會取消到別人的
func TestChatSession_RoomSubscriptionPerConnection(t *testing.T) {
	a := newTestSession("alice")
	b := newTestSession("bob")

	ctxA1, cancelA1 := context.WithCancel(context.Background())
	a.SwapRoomSubscription(cancelA1)

	ctxB, cancelB := context.WithCancel(context.Background())
	b.SwapRoomSubscription(cancelB)
	assert.NoError(t, ctxA1.Err()) // b 進房不影響 a 的訂閱

	// 同一條連線換房才收掉上一個訂閱
	ctxA2, cancelA2 := context.WithCancel(context.Background())
	a.SwapRoomSubscription(cancelA2)
	assert.ErrorIs(t, ctxA1.Err(), context.Canceled)
	assert.NoError(t, ctxA2.Err())

	// 離房收掉訂閱，斷線時 Close 一樣收
	a.CancelRoomSubscription()
	assert.ErrorIs(t, ctxA2.Err(), context.Canceled)

	b.Close()
	assert.ErrorIs(t, ctxB.Err(), context.Canceled)
}

// 進房時餵入還存活的 typing 狀態，自己被排除
func TestChatSession_SeedTypers(t *testing.T) {
	s := newTestSession("me")
	s.OpenChat("chat-a", nil)

	s.SeedTypers(map[string]string{
		"me":     "Me",
		"friend": "Friend",
	})

	typers := s.Typers()
	assert.Equal(t, map[string]string{"friend": "Friend"}, typers)
}
