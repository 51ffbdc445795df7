package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelDM    = "dm"

	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"

	MessageStatusDraft    = "draft"
	MessageStatusApproved = "approved"
	MessageStatusSent     = "sent"
	MessageStatusFailed   = "failed" // terminal; an operator creates a new draft
	MessageStatusReceived = "received"
)

// Message is one send/receive event within a thread. ProviderMsgID and
// SentAt are set only once the message is dispatched.
type Message struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ThreadID  uuid.UUID `db:"thread_id" json:"thread_id"`
	Channel   string    `db:"channel" json:"channel"`
	Direction string    `db:"direction" json:"direction"`
	Status    string    `db:"status" json:"status"`

	Subject       *string `db:"subject" json:"subject,omitempty"`
	Body          string  `db:"body" json:"body"`
	ProviderMsgID *string `db:"provider_msg_id" json:"provider_msg_id,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	SentAt    *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}
