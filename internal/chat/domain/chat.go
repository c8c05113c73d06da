package domain

// ChatType definition chat type
type ChatType string

const (
	//ChatTypeDirect definition chat 1 on 1
	ChatTypeDirect ChatType = "direct"
	//ChatTypeGroup definition chat group
	ChatTypeGroup ChatType = "group"
)

// ChatStatus server-side chat status
type ChatStatus string

const (
	// ChatStatusActive normal conversation
	ChatStatusActive ChatStatus = "active"
	// ChatStatusPending message request waiting for the recipient decision
	ChatStatusPending ChatStatus = "pending"
	// ChatStatusDeclined declined request, kept in storage but filtered from view
	ChatStatusDeclined ChatStatus = "declined"
)

// MessagePreview 聊天列表用的最後一則訊息摘要
type MessagePreview struct {
	SenderID  string `bson:"sender_id" json:"sender_id"`
	Content   string `bson:"content" json:"content"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// Chat definition conversation thread
type Chat struct {
	ID           string          `bson:"_id,omitempty" json:"id"`
	ChatType     ChatType        `bson:"chat_type" json:"chat_type"`
	Name         string          `bson:"name,omitempty" json:"name,omitempty"`
	Participants []string        `bson:"participants,omitempty" json:"participants,omitempty"`
	Admins       []string        `bson:"admins,omitempty" json:"admins,omitempty"`
	InitiatorID  string          `bson:"initiator_id,omitempty" json:"initiator_id,omitempty"`
	Status       ChatStatus      `bson:"status" json:"status"`
	LastMessage  *MessagePreview `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastActivity int64           `bson:"last_activity" json:"last_activity"`
	CreatedAt    int64           `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// IsRequestFor 該 chat 對 viewer 來說是否為待決定的 message request
// 自己發起的 pending chat 不算 request，發起方看到的是一般對話
func (c *Chat) IsRequestFor(viewerID string) bool {
	return c.Status == ChatStatusPending && c.InitiatorID != viewerID
}
