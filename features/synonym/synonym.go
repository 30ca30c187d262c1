// Package synonym manages the domain synonym dictionary used for query
// expansion. The dictionary lives in Postgres and is served to the search
// path from an in-memory snapshot.
package synonym

import (
	"context"
	"sync/atomic"
)

type Repository interface {
	GetAll(ctx context.Context) (map[string][]string, error)
	ReplaceAll(ctx context.Context, dict map[string][]string) error
}

type Service struct {
	repo Repository
	dict atomic.Pointer[map[string][]string]
}

func NewService(repo Repository) *Service {
	s := &Service{repo: repo}
	empty := map[string][]string{}
	s.dict.Store(&empty)
	return s
}

// Load refreshes the in-memory snapshot from the repository.
func (s *Service) Load(ctx context.Context) error {
	dict, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	s.dict.Store(&dict)
	return nil
}

// Synonyms returns the current snapshot. Callers must not mutate it.
func (s *Service) Synonyms() map[string][]string {
	return *s.dict.Load()
}

// Replace swaps the whole dictionary, persisting first so a failed write
// leaves the snapshot untouched.
func (s *Service) Replace(ctx context.Context, dict map[string][]string) error {
	if err := s.repo.ReplaceAll(ctx, dict); err != nil {
		return err
	}
	s.dict.Store(&dict)
	return nil
}
