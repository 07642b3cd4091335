package store

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	ID        string    `json:"id"` // Using UUID for external ID
	Text      string    `json:"text"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	ID        string    `json:"id"` // Using UUID for external ID
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile is the display-only user record. It carries no credentials;
// real authentication is out of scope.
type Profile struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}
