package genstore

import (
	"context"
	"sync/atomic"
)

// LocalGenStore keeps the epoch in-process (default when sharing is not needed).
type LocalGenStore struct {
	gen atomic.Uint64
}

var _ GenStore = (*LocalGenStore)(nil)

func NewLocalGenStore() *LocalGenStore {
	s := &LocalGenStore{}
	s.gen.Store(Initial)
	return s
}

func (s *LocalGenStore) Load(_ context.Context) (uint64, error) {
	return s.gen.Load(), nil
}

func (s *LocalGenStore) Bump(_ context.Context) (uint64, error) {
	return s.gen.Add(1), nil
}

func (s *LocalGenStore) Close(_ context.Context) error { return nil }
