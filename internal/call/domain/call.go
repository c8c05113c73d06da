package domain

// CallType voice or video
type CallType string

const (
	// CallTypeAudio voice only call
	CallTypeAudio CallType = "audio"
	// CallTypeVideo video call
	CallTypeVideo CallType = "video"
)

// CallStatus call lifecycle status
type CallStatus string

const (
	// CallRinging 對方尚未接聽
	CallRinging CallStatus = "ringing"
	// CallConnecting 雙方已接受，provider 連線建立中
	CallConnecting CallStatus = "connecting"
	// CallConnected 通話中
	CallConnected CallStatus = "connected"
	// CallDeclined 被拒接
	CallDeclined CallStatus = "declined"
	// CallEnded 正常結束
	CallEnded CallStatus = "ended"
	// CallFailed provider 連線失敗
	CallFailed CallStatus = "failed"
)

// CallRecord 一通進行中的通話，存於 redis 並帶 TTL
type CallRecord struct {
	ID          string     `json:"id"`
	ChatID      string     `json:"chat_id"`
	CallerID    string     `json:"caller_id"`
	CalleeID    string     `json:"callee_id"`
	CallType    CallType   `json:"call_type"`
	Provider    string     `json:"provider"`
	Status      CallStatus `json:"status"`
	StartedAt   int64      `json:"started_at"`
	ConnectedAt int64      `json:"connected_at,omitempty"`
	EndedAt     int64      `json:"ended_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// JoinCredential provider 端進房憑證
type JoinCredential struct {
	Provider  string `json:"provider"`
	ChannelID string `json:"channel_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// MediaState 通話中的音視訊開關
type MediaState struct {
	AudioEnabled bool `json:"audio_enabled"`
	VideoEnabled bool `json:"video_enabled"`
}
