package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	conversationsKey = "conversations"

	defaultTitle = "Nova Conversa"
	seedText     = "Olá! Sou o ConsultAI. Como posso ajudá-lo?"

	maxTitleLen = 30
)

// ErrNoCurrentConversation is returned by AddMessage when no conversation
// is selected.
var ErrNoCurrentConversation = errors.New("no current conversation")

// ConversationStore owns the full conversation collection and the
// "current" reference. Every mutation serializes the whole collection
// back to the KV bucket; the current reference is an id lookup kept in
// memory only, exactly like the front-end it replaces.
type ConversationStore struct {
	mu            sync.Mutex
	kv            *KV
	logger        *zap.Logger
	conversations []Conversation // index 0 = most recently created
	currentID     string
	now           func() time.Time
}

func NewConversationStore(kv *KV, logger *zap.Logger) (*ConversationStore, error) {
	s := &ConversationStore{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the persisted collection. A missing key means a fresh
// install; a corrupt blob means start empty, never crash.
func (s *ConversationStore) load() error {
	raw, ok, err := s.kv.Get(conversationsKey)
	if err != nil {
		return fmt.Errorf("failed to load conversations: %w", err)
	}
	if !ok {
		return nil
	}
	var conversations []Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		s.logger.Warn("persisted conversations are corrupt, starting empty", zap.Error(err))
		return nil
	}
	s.conversations = conversations
	return nil
}

func (s *ConversationStore) persistLocked() error {
	raw, err := json.Marshal(s.conversations)
	if err != nil {
		return fmt.Errorf("failed to serialize conversations: %w", err)
	}
	if err := s.kv.Put(conversationsKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist conversations: %w", err)
	}
	return nil
}

// Create allocates a new conversation seeded with the bot greeting,
// inserts it at the front of the collection and makes it current.
func (s *ConversationStore) Create() (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := Conversation{
		ID:    uuid.NewString(),
		Title: defaultTitle,
		Messages: []Message{{
			ID:        uuid.NewString(),
			Text:      seedText,
			Sender:    SenderBot,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations = append([]Conversation{conv}, s.conversations...)
	s.currentID = conv.ID

	if err := s.persistLocked(); err != nil {
		return Conversation{}, err
	}
	return cloneConversation(conv), nil
}

// Select makes the conversation with the given id current. A miss is a
// silent no-op: the current conversation stays unchanged.
func (s *ConversationStore) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(id) >= 0 {
		s.currentID = id
	}
}

// Delete removes the conversation and its messages. Deleting the
// current conversation clears the current reference. Irreversible.
func (s *ConversationStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	return s.persistLocked()
}

// AddMessage appends a message to the current conversation. The first
// message after the seed sets the conversation title.
func (s *ConversationStore) AddMessage(text, sender string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	if s.currentID != "" {
		idx = s.indexOfLocked(s.currentID)
	}
	if idx < 0 {
		return Message{}, ErrNoCurrentConversation
	}
	conv := &s.conversations[idx]

	ts := s.now()
	// Timestamps within a conversation are non-decreasing even if the
	// wall clock steps backwards.
	if last := len(conv.Messages) - 1; last >= 0 && ts.Before(conv.Messages[last].Timestamp) {
		ts = conv.Messages[last].Timestamp
	}

	msg := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: ts,
	}

	if len(conv.Messages) == 1 {
		conv.Title = deriveTitle(text)
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = ts

	if err := s.persistLocked(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// ClearCurrent drops the current reference without deleting anything.
func (s *ConversationStore) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = ""
}

// Current returns a copy of the current conversation, if any.
func (s *ConversationStore) Current() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == "" {
		return Conversation{}, false
	}
	idx := s.indexOfLocked(s.currentID)
	if idx < 0 {
		return Conversation{}, false
	}
	return cloneConversation(s.conversations[idx]), true
}

// List returns copies of all conversations, most recently created first.
func (s *ConversationStore) List() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = cloneConversation(c)
	}
	return out
}

// Reset wipes the whole collection and the current reference.
func (s *ConversationStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	s.currentID = ""
	if err := s.kv.Delete(conversationsKey); err != nil {
		return fmt.Errorf("failed to reset conversations: %w", err)
	}
	return nil
}

func (s *ConversationStore) indexOfLocked(id string) int {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// deriveTitle truncates the first user message to 30 characters with an
// ellipsis marker when the original is longer.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTitleLen {
		return text
	}
	return string(runes[:maxTitleLen]) + "..."
}

func cloneConversation(c Conversation) Conversation {
	c.Messages = append([]Message(nil), c.Messages...)
	return c
}
