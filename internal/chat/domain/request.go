package domain

// RequestStatus definition chat request status
type RequestStatus string

const (
	//RequestPending request waiting for decision
	RequestPending RequestStatus = "pending"
	//RequestAccepted request accepted
	RequestAccepted RequestStatus = "accepted"
	// RequestDeclined request declined
	RequestDeclined RequestStatus = "declined"
)

// ChatRequest - 首次聯繫產生的 message request，對應一個 pending chat
type ChatRequest struct {
	ID          string        `bson:"_id,omitempty" json:"id"`
	ChatID      string        `bson:"chat_id" json:"chat_id"`
	InitiatorID string        `bson:"initiator_id" json:"initiator_id"`
	RecipientID string        `bson:"recipient_id" json:"recipient_id"`
	Status      RequestStatus `bson:"status" json:"status"`
	CreatedAt   int64         `bson:"created_at" json:"created_at"`
}
