package store

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeClock steps forward one second per reading so updatedAt and
// message timestamps are strictly increasing in tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func newTestStore(t *testing.T) (*ConversationStore, *KV) {
	t.Helper()

	kv, err := NewKV(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	s, err := NewConversationStore(kv, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create conversation store: %v", err)
	}
	s.now = (&fakeClock{current: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}).Now
	return s, kv
}

func TestCreateSeedsGreeting(t *testing.T) {
	s, _ := newTestStore(t)

	conv, err := s.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(conv.Messages) != 1 {
		t.Fatalf("Expected exactly one seeded message, got %d", len(conv.Messages))
	}
	seed := conv.Messages[0]
	if seed.Sender != SenderBot {
		t.Errorf("Expected seed sender %q, got %q", SenderBot, seed.Sender)
	}
	if seed.Text == "" {
		t.Error("Seed message text must be non-empty")
	}
	if conv.Title != "Nova Conversa" {
		t.Errorf("Expected default title, got %q", conv.Title)
	}

	current, ok := s.Current()
	if !ok || current.ID != conv.ID {
		t.Error("New conversation should be current")
	}
}

func TestCreateInsertsAtFront(t *testing.T) {
	s, _ := newTestStore(t)

	first, _ := s.Create()
	second, _ := s.Create()

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("Expected most recently created conversation first")
	}
}

func TestAddMessageAppendsAndTouchesUpdatedAt(t *testing.T) {
	s, _ := newTestStore(t)

	conv, _ := s.Create()
	before := conv.UpdatedAt

	msg, err := s.AddMessage("Onde fica a UPA mais próxima?", SenderUser)
	if err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if msg.ID == "" {
		t.Error("Expected a generated message id")
	}

	current, _ := s.Current()
	if got := len(current.Messages); got != 2 {
		t.Fatalf("Expected message count 2, got %d", got)
	}
	if !current.UpdatedAt.After(before) {
		t.Errorf("Expected updatedAt to advance: before=%v after=%v", before, current.UpdatedAt)
	}
}

func TestMessageTimestampsNonDecreasing(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create()

	s.AddMessage("consulta na UBS", SenderUser)
	s.AddMessage("resposta", SenderBot)
	s.AddMessage("horário de atendimento", SenderUser)

	current, _ := s.Current()
	for i := 1; i < len(current.Messages); i++ {
		prev, next := current.Messages[i-1].Timestamp, current.Messages[i].Timestamp
		if next.Before(prev) {
			t.Errorf("Timestamp at index %d (%v) precedes previous (%v)", i, next, prev)
		}
	}
}

func TestTitleDerivation(t *testing.T) {
	t.Run("short message used verbatim", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.Create()

		s.AddMessage("Onde tomar vacina?", SenderUser)
		current, _ := s.Current()
		if current.Title != "Onde tomar vacina?" {
			t.Errorf("Expected full message as title, got %q", current.Title)
		}
	})

	t.Run("long message truncated with ellipsis", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.Create()

		long := strings.Repeat("saúde ", 10) // 60 chars
		s.AddMessage(long, SenderUser)
		current, _ := s.Current()

		want := string([]rune(long)[:30]) + "..."
		if current.Title != want {
			t.Errorf("Expected title %q, got %q", want, current.Title)
		}
	})

	t.Run("title never changes after first message", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.Create()

		s.AddMessage("primeira pergunta sobre saúde", SenderUser)
		s.AddMessage("resposta do bot", SenderBot)
		s.AddMessage("segunda pergunta sobre vacina", SenderUser)

		current, _ := s.Current()
		if current.Title != "primeira pergunta sobre saúde" {
			t.Errorf("Title changed after first message: %q", current.Title)
		}
	})
}

func TestAddMessageWithoutCurrentConversation(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddMessage("oi", SenderUser); err != ErrNoCurrentConversation {
		t.Errorf("Expected ErrNoCurrentConversation, got %v", err)
	}
}

func TestDeleteCurrentClearsCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	conv, _ := s.Create()

	if err := s.Delete(conv.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Deleting the current conversation must clear the current reference")
	}
	if len(s.List()) != 0 {
		t.Error("Conversation should be removed from the collection")
	}
}

func TestDeleteNonCurrentKeepsCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	other, _ := s.Create()
	current, _ := s.Create()

	if err := s.Delete(other.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, ok := s.Current()
	if !ok || got.ID != current.ID {
		t.Error("Deleting a non-current conversation must leave current unchanged")
	}
}

func TestSelectMissingIsSilentNoop(t *testing.T) {
	s, _ := newTestStore(t)
	conv, _ := s.Create()

	s.Select("does-not-exist")

	got, ok := s.Current()
	if !ok || got.ID != conv.ID {
		t.Error("Selecting a non-existent id must leave current unchanged")
	}
}

func TestSelectSwitchesCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	first, _ := s.Create()
	s.Create()

	s.Select(first.ID)

	got, ok := s.Current()
	if !ok || got.ID != first.ID {
		t.Error("Select should switch the current conversation")
	}
}

func TestClearCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create()

	s.ClearCurrent()

	if _, ok := s.Current(); ok {
		t.Error("ClearCurrent must drop the current reference")
	}
	if len(s.List()) != 1 {
		t.Error("ClearCurrent must not delete conversations")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	s, kv := newTestStore(t)
	conv, _ := s.Create()
	s.AddMessage("Onde fica a UPA mais próxima?", SenderUser)

	reloaded, err := NewConversationStore(kv, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to reload store: %v", err)
	}

	list := reloaded.List()
	if len(list) != 1 {
		t.Fatalf("Expected 1 persisted conversation, got %d", len(list))
	}
	got := list[0]
	if got.ID != conv.ID {
		t.Errorf("Expected id %q, got %q", conv.ID, got.ID)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Expected 2 persisted messages, got %d", len(got.Messages))
	}
	if !got.CreatedAt.Equal(conv.CreatedAt) {
		t.Errorf("CreatedAt not reconstructed: want %v, got %v", conv.CreatedAt, got.CreatedAt)
	}
	if _, ok := reloaded.Current(); ok {
		t.Error("Current reference must not survive a reload")
	}
}

func TestCorruptBlobStartsEmpty(t *testing.T) {
	kv, err := NewKV(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	if err := kv.Put("conversations", "{not valid json"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	s, err := NewConversationStore(kv, zap.NewNop())
	if err != nil {
		t.Fatalf("Corrupt blob must not fail store construction: %v", err)
	}
	if len(s.List()) != 0 {
		t.Error("Corrupt blob must mean start empty")
	}
}

func TestReset(t *testing.T) {
	s, kv := newTestStore(t)
	s.Create()
	s.Create()

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(s.List()) != 0 {
		t.Error("Reset must drop all conversations")
	}
	if _, ok, _ := kv.Get("conversations"); ok {
		t.Error("Reset must remove the persisted collection")
	}
}
