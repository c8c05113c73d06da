package app

import (
	"context"
	"sync"
	"time"

	"social_network_service/internal/chat/domain"
	"social_network_service/internal/chat/repository"
	"social_network_service/pkg"
)

// ChatSession 單一 websocket 連線的本地檢視狀態
// 所有 realtime 事件先經過這裡 reconcile，再決定要不要轉發給連線端。
// 不變量：一個 chat 同時間只會出現在 active 或 requests 其中一張清單，
// discarded 之後任何事件都不再讓它回來。
type ChatSession struct {
	mu sync.Mutex

	userID string

	active    map[string]*domain.Chat
	requests  map[string]*domain.Chat
	discarded map[string]struct{}

	// 目前打開的 chat，開著的 chat 未讀恆為 0
	openChatID string
	messages   []domain.ChatMessage
	msgIndex   map[string]struct{}

	unread map[string]int

	typers      map[string]string
	typerTimers map[string]*time.Timer

	// 目前房間訂閱的 cancel，屬於這條連線，換房或斷線時收掉
	roomCancel context.CancelFunc

	// 收到本地不認得的 chat 的事件時設起，由連線迴圈觸發 full reload
	needReload bool
}

// NewChatSession create session state for one connection
func NewChatSession(userID string) *ChatSession {
	return &ChatSession{
		userID:      userID,
		active:      make(map[string]*domain.Chat),
		requests:    make(map[string]*domain.Chat),
		discarded:   make(map[string]struct{}),
		msgIndex:    make(map[string]struct{}),
		unread:      make(map[string]int),
		typers:      make(map[string]string),
		typerTimers: make(map[string]*time.Timer),
	}
}

// ResetLists 以伺服器的 resync 結果整個換掉本地清單
// resync 後 decision cache 已反映在結果裡，本地 unread 也以伺服器為準
func (s *ChatSession) ResetLists(overview *ChatOverview) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = make(map[string]*domain.Chat, len(overview.Active))
	s.requests = make(map[string]*domain.Chat, len(overview.Requests))
	for _, c := range overview.Active {
		s.active[c.ID] = c
	}
	for _, c := range overview.Requests {
		s.requests[c.ID] = c
	}

	s.unread = make(map[string]int, len(overview.Unread))
	for _, u := range overview.Unread {
		if u.ChatID == s.openChatID {
			continue // 開著的 chat 未讀固定 0
		}
		s.unread[u.ChatID] = u.UnreadCount
	}

	s.needReload = false
}

// OpenChat 進入 chat 畫面：清空訊息緩衝並把未讀歸零
func (s *ChatSession) OpenChat(chatID string, history []domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openChatID = chatID
	s.messages = make([]domain.ChatMessage, 0, len(history))
	s.msgIndex = make(map[string]struct{}, len(history))
	for _, m := range history {
		if _, dup := s.msgIndex[m.ID]; dup {
			continue
		}
		s.msgIndex[m.ID] = struct{}{}
		s.messages = append(s.messages, m)
	}
	delete(s.unread, chatID)
	s.clearTypersLocked()
}

// CloseChat 離開 chat 畫面
func (s *ChatSession) CloseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openChatID = ""
	s.messages = nil
	s.msgIndex = make(map[string]struct{})
	s.clearTypersLocked()
}

// Apply reconcile 一個 realtime 事件
// 回傳 forward=true 表示事件該轉發給連線端，needReload=true 表示本地清單
// 已追不上伺服器，連線迴圈應觸發一次 full reload。
func (s *ChatSession) Apply(ev domain.RealtimeEvent) (forward bool, needReload bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Event {
	case domain.EventNewMessage:
		return s.applyNewMessageLocked(ev)
	case domain.EventRequestAccepted:
		return s.applyAcceptedLocked(ev), false
	case domain.EventRequestDeclined:
		return s.applyDeclinedLocked(ev), false
	case domain.EventMessagesRead:
		return s.applyReadLocked(ev), false
	case domain.EventMessageDeleted:
		return s.applyDeletedLocked(ev), false
	case domain.EventUserTyping:
		return s.applyTypingLocked(ev), false
	case domain.EventUserStoppedTyping:
		return s.applyStoppedTypingLocked(ev), false
	case domain.EventIncomingCall, domain.EventCallDeclined, domain.EventCallEnded:
		// 通話事件不影響清單狀態，直接轉發
		return true, false
	}
	return false, false
}

func (s *ChatSession) applyNewMessageLocked(ev domain.RealtimeEvent) (bool, bool) {
	if _, gone := s.discarded[ev.ChatID]; gone {
		return false, false // declined chat 的訊息一律忽略
	}

	chat := s.active[ev.ChatID]
	if chat == nil {
		chat = s.requests[ev.ChatID]
	}
	if chat == nil {
		// 本地不認得這個 chat：可能是剛建立的 request，整包重載
		s.needReload = true
		return false, true
	}

	if ev.Message != nil {
		if chat.LastMessage == nil {
			chat.LastMessage = &domain.MessagePreview{}
		}
		chat.LastMessage.SenderID = ev.Message.SenderID
		chat.LastMessage.Content = ev.Message.Content
		chat.LastMessage.Timestamp = ev.Message.Timestamp
		chat.LastActivity = ev.Message.Timestamp
	}

	if ev.ChatID == s.openChatID {
		// 開著的 chat：訊息進緩衝，未讀維持 0
		if ev.Message != nil {
			if _, dup := s.msgIndex[ev.Message.ID]; !dup {
				s.msgIndex[ev.Message.ID] = struct{}{}
				s.messages = append(s.messages, *ev.Message)
			}
		}
		return true, false
	}

	// 伺服器有附 count 就以伺服器為準，否則本地 +1
	if ev.UnreadCount != nil {
		s.unread[ev.ChatID] = *ev.UnreadCount
	} else {
		s.unread[ev.ChatID]++
	}
	return true, false
}

func (s *ChatSession) applyAcceptedLocked(ev domain.RealtimeEvent) bool {
	if _, gone := s.discarded[ev.ChatID]; gone {
		return false
	}
	if chat, ok := s.requests[ev.ChatID]; ok {
		delete(s.requests, ev.ChatID)
		chat.Status = domain.ChatStatusActive
		s.active[ev.ChatID] = chat
		return true
	}
	if chat, ok := s.active[ev.ChatID]; ok {
		chat.Status = domain.ChatStatusActive // 重複 accept 冪等
		return true
	}
	return false
}

func (s *ChatSession) applyDeclinedLocked(ev domain.RealtimeEvent) bool {
	if _, gone := s.discarded[ev.ChatID]; gone {
		return false
	}
	if _, ok := s.requests[ev.ChatID]; ok {
		delete(s.requests, ev.ChatID)
		delete(s.unread, ev.ChatID)
		s.discarded[ev.ChatID] = struct{}{}
		if s.openChatID == ev.ChatID {
			s.openChatID = ""
			s.messages = nil
			s.msgIndex = make(map[string]struct{})
		}
		return true
	}
	// active chat 不受 decline 影響
	return false
}

func (s *ChatSession) applyReadLocked(ev domain.RealtimeEvent) bool {
	if ev.ChatID != s.openChatID {
		return false
	}
	for i := range s.messages {
		m := &s.messages[i]
		if len(ev.MessageIDs) > 0 && !pkg.Contains(ev.MessageIDs, m.ID) {
			continue
		}
		if pkg.Contains(m.ReadBy, ev.ReaderID) {
			continue // read_by 只增不減
		}
		m.ReadBy = append(m.ReadBy, ev.ReaderID)
	}
	return true
}

func (s *ChatSession) applyDeletedLocked(ev domain.RealtimeEvent) bool {
	if ev.ChatID != s.openChatID {
		return true // 清單畫面也要知道訊息被刪了
	}
	for i := range s.messages {
		if s.messages[i].ID == ev.MessageID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			delete(s.msgIndex, ev.MessageID)
			break
		}
	}
	return true
}

// typing 只在開著的 chat 顯示，3 秒沒有續訊號自動清掉
func (s *ChatSession) applyTypingLocked(ev domain.RealtimeEvent) bool {
	if ev.ChatID != s.openChatID || ev.SenderID == s.userID {
		return false
	}

	s.trackTyperLocked(ev.SenderID, ev.SenderName)
	return true
}

func (s *ChatSession) trackTyperLocked(senderID, senderName string) {
	s.typers[senderID] = senderName
	if t, ok := s.typerTimers[senderID]; ok {
		t.Stop()
	}
	s.typerTimers[senderID] = time.AfterFunc(repository.TypingIdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.typers, senderID)
		delete(s.typerTimers, senderID)
	})
}

// SeedTypers 進房時用伺服器上還存活的 typing 狀態餵初值，之後靠事件維護
func (s *ChatSession) SeedTypers(typers map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, name := range typers {
		if id == s.userID {
			continue
		}
		s.trackTyperLocked(id, name)
	}
}

func (s *ChatSession) applyStoppedTypingLocked(ev domain.RealtimeEvent) bool {
	if ev.ChatID != s.openChatID {
		return false
	}
	if t, ok := s.typerTimers[ev.SenderID]; ok {
		t.Stop()
		delete(s.typerTimers, ev.SenderID)
	}
	if _, ok := s.typers[ev.SenderID]; !ok {
		return false
	}
	delete(s.typers, ev.SenderID)
	return true
}

// SwapRoomSubscription 換房：先取消這條連線上一個房間的訂閱，再記住新的 cancel
func (s *ChatSession) SwapRoomSubscription(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomCancel != nil {
		s.roomCancel()
	}
	s.roomCancel = cancel
}

// CancelRoomSubscription 離房時收掉房間訂閱
func (s *ChatSession) CancelRoomSubscription() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomCancel != nil {
		s.roomCancel()
		s.roomCancel = nil
	}
}

func (s *ChatSession) clearTypersLocked() {
	for id, t := range s.typerTimers {
		t.Stop()
		delete(s.typerTimers, id)
	}
	s.typers = make(map[string]string)
}

// ApplyLocalDecision 本地 accept/decline 立即反映到清單，不等伺服器事件
func (s *ChatSession) ApplyLocalDecision(chatID string, decision domain.RequestDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch decision {
	case domain.DecisionAccepted:
		s.applyAcceptedLocked(domain.RealtimeEvent{ChatID: chatID})
	case domain.DecisionDeclined:
		s.applyDeclinedLocked(domain.RealtimeEvent{ChatID: chatID})
	}
}

// NeedReload 讀取並清除 reload 旗標
func (s *ChatSession) NeedReload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	need := s.needReload
	s.needReload = false
	return need
}

// State 該 chat 目前的本地狀態
func (s *ChatSession) State(chatID string) domain.ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.discarded[chatID]; ok {
		return domain.StateDiscarded
	}
	if _, ok := s.active[chatID]; ok {
		return domain.StateActive
	}
	if _, ok := s.requests[chatID]; ok {
		return domain.StatePending
	}
	return domain.StateUnknown
}

// Unread 某 chat 的本地未讀數
func (s *ChatSession) Unread(chatID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[chatID]
}

// OpenChatID 目前打開的 chat
func (s *ChatSession) OpenChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openChatID
}

// Messages 開著的 chat 的訊息緩衝快照
func (s *ChatSession) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Typers 目前顯示中的 typing 使用者
func (s *ChatSession) Typers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.typers))
	for k, v := range s.typers {
		out[k] = v
	}
	return out
}

// Close 釋放計時器與房間訂閱
func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearTypersLocked()
	if s.roomCancel != nil {
		s.roomCancel()
		s.roomCancel = nil
	}
}
