package categories

import (
	"context"
	"sync"
)

// Service resolves category names to per-user IDs in memory. Each user is
// seeded with the service's seed names on first use; other names get the next
// ID when first resolved. It is safe for concurrent use.
type Service struct {
	seed []string

	mu     sync.Mutex
	byUser map[string]map[string]int64
}

// NewService creates a Service that seeds every user with names.
func NewService(names ...string) *Service {
	return &Service{
		seed:   append([]string(nil), names...),
		byUser: make(map[string]map[string]int64),
	}
}

// ResolveCategory returns the user's ID for name, assigning one if needed.
func (s *Service) ResolveCategory(_ context.Context, userID, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.user(userID)
	if id, ok := ids[name]; ok {
		return id, nil
	}
	id := int64(len(ids) + 1)
	ids[name] = id
	return id, nil
}

func (s *Service) user(userID string) map[string]int64 {
	ids, ok := s.byUser[userID]
	if !ok {
		ids = make(map[string]int64, len(s.seed))
		for _, name := range s.seed {
			if _, dup := ids[name]; !dup {
				ids[name] = int64(len(ids) + 1)
			}
		}
		s.byUser[userID] = ids
	}
	return ids
}
