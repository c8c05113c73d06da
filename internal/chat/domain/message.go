package domain

// MessageBucket 表示某個 chat 某天的訊息存儲
type MessageBucket struct {
	ChatID   string        `bson:"chat_id" json:"chat_id"`
	Date     string        `bson:"date" json:"date"` // 格式："2025-01-23"
	Messages []ChatMessage `bson:"messages" json:"messages"`
}

// ChatMessage 表示一則聊天訊息
// 訊息一旦送達即不可變，唯 ReadBy 集合只增不減
type ChatMessage struct {
	ID         string   `bson:"id" json:"id"`
	ChatID     string   `bson:"chat_id" json:"chat_id"`
	SenderID   string   `bson:"sender_id" json:"sender_id"`
	Content    string   `bson:"content" json:"content"`
	Attachment string   `bson:"attachment,omitempty" json:"attachment,omitempty"` // minio object name
	Timestamp  int64    `bson:"timestamp" json:"timestamp"`
	ReadBy     []string `bson:"read_by,omitempty" json:"read_by,omitempty"`
}

// ChatUnreadInfo definition unread by chat
type ChatUnreadInfo struct {
	ChatID              string `bson:"_id" json:"chat_id"`
	UnreadCount         int    `bson:"unread_count" json:"unread_count"`
	LastUnreadTimeStamp int64  `bson:"last_unread_timestamp" json:"last_unread_timestamp"`
}
