package app

import (
	"sync"
	"time"

	"social_network_service/internal/call/domain"
)

// CallSessionSnapshot 單一連線觀察到的通話狀態
type CallSessionSnapshot struct {
	CallID   string            `json:"call_id"`
	ChatID   string            `json:"chat_id"`
	Status   domain.CallStatus `json:"status"`
	Media    domain.MediaState `json:"media"`
	Duration int64             `json:"duration"`
	Error    string            `json:"error,omitempty"`
}

// CallSession 連線端的通話檢視狀態
// 通話只有一通進行中，decline/end 之後 snapshot 保留到下一次發起
type CallSession struct {
	mu sync.Mutex

	callID      string
	chatID      string
	status      domain.CallStatus
	media       domain.MediaState
	connectedAt time.Time
	endedAt     time.Time
	lastErr     string

	now func() time.Time
}

// NewCallSession create call view state for one connection
func NewCallSession() *CallSession {
	return &CallSession{now: time.Now}
}

// Begin 發起或收到來電
func (s *CallSession) Begin(callID, chatID string, callType domain.CallType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callID = callID
	s.chatID = chatID
	s.status = domain.CallRinging
	s.media = domain.MediaState{
		AudioEnabled: true,
		VideoEnabled: callType == domain.CallTypeVideo,
	}
	s.connectedAt = time.Time{}
	s.endedAt = time.Time{}
	s.lastErr = ""
}

// Connected provider 連線完成
func (s *CallSession) Connected(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callID != callID {
		return
	}
	s.status = domain.CallConnected
	s.connectedAt = s.now()
}

// Declined 被拒接或自己拒接
func (s *CallSession) Declined(callID string) {
	s.finish(callID, domain.CallDeclined, "")
}

// Ended 通話結束
func (s *CallSession) Ended(callID string) {
	s.finish(callID, domain.CallEnded, "")
}

// Failed provider 連線失敗
func (s *CallSession) Failed(callID string, reason string) {
	s.finish(callID, domain.CallFailed, reason)
}

func (s *CallSession) finish(callID string, status domain.CallStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callID != callID || s.callID == "" {
		return
	}
	// ended/declined 是終態，重複事件不覆寫
	if s.status == domain.CallEnded || s.status == domain.CallDeclined || s.status == domain.CallFailed {
		return
	}
	s.status = status
	s.endedAt = s.now()
	s.lastErr = errMsg
}

// ToggleAudio 切換麥克風，回傳新狀態
func (s *CallSession) ToggleAudio() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media.AudioEnabled = !s.media.AudioEnabled
	return s.media.AudioEnabled
}

// ToggleVideo 切換鏡頭，回傳新狀態
func (s *CallSession) ToggleVideo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media.VideoEnabled = !s.media.VideoEnabled
	return s.media.VideoEnabled
}

// Active 是否有進行中的通話
func (s *CallSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callID != "" &&
		(s.status == domain.CallRinging || s.status == domain.CallConnecting || s.status == domain.CallConnected)
}

// Snapshot 目前狀態快照
func (s *CallSession) Snapshot() CallSessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var duration int64
	if !s.connectedAt.IsZero() {
		end := s.endedAt
		if end.IsZero() {
			end = s.now()
		}
		duration = int64(end.Sub(s.connectedAt).Seconds())
	}

	return CallSessionSnapshot{
		CallID:   s.callID,
		ChatID:   s.chatID,
		Status:   s.status,
		Media:    s.media,
		Duration: duration,
		Error:    s.lastErr,
	}
}
