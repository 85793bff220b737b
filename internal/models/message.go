package models

import "time"

// Message is a single chat message.
type Message struct {
	ID        int       `db:"id" json:"id"`
	ChatID    int       `db:"chat_id" json:"chat_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MessageView is a message with its author's username, as returned by history reads.
type MessageView struct {
	Message
	Username string `db:"username" json:"username"`
}
