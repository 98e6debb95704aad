package models

// MessageStatus is the terminal processing state of an inbound message.
type MessageStatus string

const (
	MessageStatusReceived    MessageStatus = "received"
	MessageStatusRateLimited MessageStatus = "rate_limited"
	MessageStatusBlocked     MessageStatus = "blocked"
	MessageStatusProcessed   MessageStatus = "processed"
	MessageStatusFailed      MessageStatus = "failed"
)

// MessageLog records one inbound provider message. The (provider,
// provider_message_id) unique index is the dedup anchor: insert-or-detect
// conflict, never read-then-write. Rows are write-once except for the final
// status/error update, which happens outside the processing transaction so
// failures stay observable.
type MessageLog struct {
	Base
	Provider          string        `gorm:"not null;uniqueIndex:uq_msg_provider_msgid" json:"provider"`
	ProviderMessageID string        `gorm:"not null;uniqueIndex:uq_msg_provider_msgid" json:"provider_message_id"`
	ChatID            string        `gorm:"not null;index" json:"chat_id"`
	Direction         string        `gorm:"not null;default:in" json:"direction"`
	Text              string        `json:"text"`
	Payload           string        `gorm:"type:text" json:"payload,omitempty"`
	Status            MessageStatus `gorm:"not null;default:received" json:"status"`
	Error             string        `json:"error,omitempty"`
}
