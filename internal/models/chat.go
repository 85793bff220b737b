package models

import "time"

// Chat represents a named group chat.
type Chat struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatSummary is the list view of a chat.
type ChatSummary struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Membership links a user to a chat.
type Membership struct {
	ChatID  int  `db:"chat_id" json:"chat_id"`
	UserID  int  `db:"user_id" json:"user_id"`
	IsAdmin bool `db:"is_admin" json:"is_admin"`
}

// Member is a chat member joined with its user profile.
type Member struct {
	ID       int     `db:"id" json:"id"`
	Username string  `db:"username" json:"username"`
	Name     *string `db:"name" json:"name"`
	IsAdmin  bool    `db:"is_admin" json:"isAdmin"`
}
