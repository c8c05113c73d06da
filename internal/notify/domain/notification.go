package domain

// PushQueue rabbitmq queue name for push notifications
const PushQueue = "push_notifications"

// PushAction 通知附帶的動作，客戶端據此顯示操作鈕
type PushAction string

const (
	// ActionNone 純通知
	ActionNone PushAction = ""
	// ActionAcceptCall 來電通知的接聽動作
	ActionAcceptCall PushAction = "ACCEPT_CALL"
	// ActionDeclineCall 來電通知的拒接動作
	ActionDeclineCall PushAction = "DECLINE_CALL"
)

// PushNotification 排入 rabbitmq 等待推送的通知
type PushNotification struct {
	UserID   string     `json:"user_id"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Action   PushAction `json:"action,omitempty"`
	ChatID   string     `json:"chat_id,omitempty"`
	CallID   string     `json:"call_id,omitempty"`
	SenderID string     `json:"sender_id,omitempty"`
	Attempt  int        `json:"attempt"`
}
