package store

import (
	"testing"

	"go.uber.org/zap"
)

func newTestProfileStore(t *testing.T) (*ProfileStore, *KV) {
	t.Helper()

	kv, err := NewKV(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return NewProfileStore(kv, zap.NewNop()), kv
}

func TestProfileRoundTrip(t *testing.T) {
	s, _ := newTestProfileStore(t)

	if _, ok, err := s.Get(); err != nil || ok {
		t.Fatalf("Expected no profile initially, ok=%v err=%v", ok, err)
	}

	want := Profile{ID: "abc", Nome: "Maria", Email: "maria@example.com"}
	if err := s.Put(want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get()
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if err := s.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(); ok {
		t.Error("Profile should be gone after Delete")
	}
}

func TestCorruptProfileTreatedAsAbsent(t *testing.T) {
	s, kv := newTestProfileStore(t)

	if err := kv.Put("user", "not json at all"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, err := s.Get(); err != nil || ok {
		t.Errorf("Corrupt profile must read as absent, ok=%v err=%v", ok, err)
	}
}
