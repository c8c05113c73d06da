package domain

// CollType mongo db collection
type CollType string

const (
	//Chats chat collection
	Chats CollType = "chats"
	//Requests chat request collection
	Requests CollType = "chat_requests"
	//Messages message bucket collection
	Messages CollType = "chat_messages"
)

// Action websocket request action
type Action string

const (
	// OpenChat websocket action open_chat
	OpenChat Action = "open_chat"
	// JoinChat websocket action join_chat
	JoinChat Action = "join_chat"
	// LeaveChat websocket action leave_chat
	LeaveChat Action = "leave_chat"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// DeleteMessage websocket action delete_message
	DeleteMessage Action = "delete_message"
	// ReadMessages websocket action read_messages
	ReadMessages Action = "read_messages"

	// StartTyping websocket action start_typing
	StartTyping Action = "start_typing"
	// StopTyping websocket action stop_typing
	StopTyping Action = "stop_typing"

	// AcceptRequest websocket action accept_request
	AcceptRequest Action = "accept_request"
	// DeclineRequest websocket action decline_request
	DeclineRequest Action = "decline_request"

	// GetChats websocket action get_chats
	GetChats Action = "get_chats"
	// GetRequests websocket action get_requests
	GetRequests Action = "get_requests"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// InitiateCall websocket action initiate_call
	InitiateCall Action = "initiate_call"
	// AcceptCall websocket action accept_call
	AcceptCall Action = "accept_call"
	// DeclineCall websocket action decline_call
	DeclineCall Action = "decline_call"
	// EndCall websocket action end_call
	EndCall Action = "end_call"
)

// 伺服器推送給客戶端的事件名
const (
	// EventNewMessage new_message
	EventNewMessage = "new_message"
	// EventUserTyping user_typing
	EventUserTyping = "user_typing"
	// EventUserStoppedTyping user_stopped_typing
	EventUserStoppedTyping = "user_stopped_typing"
	// EventMessageDeleted message_deleted
	EventMessageDeleted = "message_deleted"
	// EventMessagesRead messages_read
	EventMessagesRead = "messages_read"
	// EventRequestAccepted chat_request_accepted
	EventRequestAccepted = "chat_request_accepted"
	// EventRequestDeclined chat_request_declined
	EventRequestDeclined = "chat_request_declined"
	// EventIncomingCall incoming_call
	EventIncomingCall = "incoming_call"
	// EventCallDeclined call_declined
	EventCallDeclined = "call_declined"
	// EventCallEnded call_ended
	EventCallEnded = "call_ended"
)

// RealtimeEvent 透過 redis pub/sub 推送的事件
type RealtimeEvent struct {
	Event       string                 `json:"event"`
	ChatID      string                 `json:"chat_id,omitempty"`
	SenderID    string                 `json:"sender_id,omitempty"`
	SenderName  string                 `json:"sender_name,omitempty"`
	Message     *ChatMessage           `json:"message,omitempty"`
	MessageID   string                 `json:"message_id,omitempty"`
	MessageIDs  []string               `json:"message_ids,omitempty"`
	ReaderID    string                 `json:"reader_id,omitempty"`
	UnreadCount *int                   `json:"unread_count,omitempty"` // server-supplied count 優先於本地 +1
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// WSRequest websocket Request
type WSRequest struct {
	Action     string   `json:"action"`
	ChatID     string   `json:"chat_id"`
	ChatName   string   `json:"chat_name"`
	ChatType   string   `json:"chat_type"`
	ReceiverID string   `json:"receiver_id"`
	Content    string   `json:"content"`
	Attachment string   `json:"attachment"`
	MessageID  string   `json:"message_id"`
	MessageIDs []string `json:"message_ids"`
	CallID     string   `json:"call_id"`
	CallType   string   `json:"call_type"`
	Provider   string   `json:"provider"`
	Reason     string   `json:"reason"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
