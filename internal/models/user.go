package models

// User is the identity record owned by the account subsystem. This service only reads it.
type User struct {
	ID       int     `db:"id" json:"id"`
	Username string  `db:"username" json:"username"`
	Name     *string `db:"name" json:"name,omitempty"`
	Role     string  `db:"role" json:"role"`
}

// Contact is a relationship between two users. Sender is whoever initiated it.
type Contact struct {
	ID         int  `db:"id" json:"id"`
	SenderID   int  `db:"sender_id" json:"sender_id"`
	ReceiverID int  `db:"receiver_id" json:"receiver_id"`
	Accepted   bool `db:"accepted" json:"accepted"`
}

// ContactView is the user-facing listing entry of a contact.
type ContactView struct {
	Username string  `db:"username" json:"username"`
	Name     *string `db:"name" json:"name"`
}
