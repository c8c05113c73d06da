package domain

// ChatState viewer 端 chat 生命週期狀態
type ChatState string

const (
	// StateUnknown chat 尚未出現在任何本地清單
	StateUnknown ChatState = "unknown"
	// StatePending chat 在 request 清單
	StatePending ChatState = "pending"
	// StateActive chat 在 active 清單
	StateActive ChatState = "active"
	// StateDiscarded chat 已被拒絕，從所有清單移除
	StateDiscarded ChatState = "discarded"
)

// ChatStateEvent 生命週期轉移事件
type ChatStateEvent string

const (
	// EventSyncActive 伺服器同步結果為 active
	EventSyncActive ChatStateEvent = "sync_active"
	// EventSyncPending 伺服器同步結果為 pending
	EventSyncPending ChatStateEvent = "sync_pending"
	// EventAccept 本地或遠端接受 request
	EventAccept ChatStateEvent = "accept"
	// EventDecline 本地或遠端拒絕 request
	EventDecline ChatStateEvent = "decline"
	// EventInbound 收到該 chat 的新訊息
	EventInbound ChatStateEvent = "inbound"
)

// Transition 純函式狀態轉移
// 全域不變量：任一 chat 恆只屬於 {active, pending, discarded} 其中之一，
// discarded 為吸收態，之後的任何事件都不再改變狀態。
// Accept/Decline 為冪等：重複套用結果不變。
func Transition(s ChatState, e ChatStateEvent) ChatState {
	if s == StateDiscarded {
		return StateDiscarded
	}

	switch e {
	case EventSyncActive:
		return StateActive
	case EventSyncPending:
		// 已 accept 的 chat 不會被舊的 pending 同步拉回 request 清單
		if s == StateActive {
			return StateActive
		}
		return StatePending
	case EventAccept:
		return StateActive
	case EventDecline:
		if s == StateActive {
			return StateActive
		}
		return StateDiscarded
	case EventInbound:
		// 新訊息不改變清單歸屬，Unknown 由上層觸發 full reload
		return s
	}
	return s
}

// RequestDecision 本地 accept/decline 決定，持久化於 decision cache
type RequestDecision string

const (
	// DecisionAccepted request 已接受
	DecisionAccepted RequestDecision = "accepted"
	// DecisionDeclined request 已拒絕
	DecisionDeclined RequestDecision = "declined"
)
