package models

import "time"

// Activity kinds published to the chat activity stream.
const (
	ActivityChatCreated    = "chat.created"
	ActivityChatRenamed    = "chat.renamed"
	ActivityChatDeleted    = "chat.deleted"
	ActivityMemberAdded    = "member.added"
	ActivityMemberRemoved  = "member.removed"
	ActivityAdminPromoted  = "member.promoted"
	ActivityMessageSent    = "message.sent"
	ActivityMessageEdited  = "message.edited"
	ActivityMessageDeleted = "message.deleted"
)

// Activity records a successful mutation for downstream consumers.
type Activity struct {
	Kind       string    `json:"kind"`
	ChatID     int       `json:"chat_id"`
	ActorID    int       `json:"actor_id"`
	TargetID   int       `json:"target_id,omitempty"`
	MessageID  int       `json:"message_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
