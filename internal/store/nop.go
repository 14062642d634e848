package store

import "time"

// NopStore is a no-op store used in dry-run mode. It never marks jobs as seen,
// so every job appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(id string) (bool, error) { return false, nil }

func (s *NopStore) MarkSeen(id string, at time.Time) error { return nil }

func (s *NopStore) Prune(olderThan time.Duration) error { return nil }

func (s *NopStore) Close() error { return nil }
