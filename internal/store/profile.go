package store

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

const profileKey = "user"

// ProfileStore persists the display-only user record under its own
// fixed key.
type ProfileStore struct {
	kv     *KV
	logger *zap.Logger
}

func NewProfileStore(kv *KV, logger *zap.Logger) *ProfileStore {
	return &ProfileStore{kv: kv, logger: logger}
}

// Get returns the stored profile, if any. A corrupt record is treated
// as absent.
func (s *ProfileStore) Get() (Profile, bool, error) {
	raw, ok, err := s.kv.Get(profileKey)
	if err != nil {
		return Profile{}, false, fmt.Errorf("failed to load profile: %w", err)
	}
	if !ok {
		return Profile{}, false, nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("persisted profile is corrupt, treating as absent", zap.Error(err))
		return Profile{}, false, nil
	}
	return p, true, nil
}

func (s *ProfileStore) Put(p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	if err := s.kv.Put(profileKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) Delete() error {
	if err := s.kv.Delete(profileKey); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
