package chat

import (
	"context"
	"sync"

	"pagechat/internal/models"
)

// Members caches the mention candidate pool for one composition
// session. The directory is hit once; failures are not cached so a
// later call can retry.
type Members struct {
	dir MemberDirectory

	mu     sync.Mutex
	loaded bool
	list   []models.UserMention
}

func NewMembers(dir MemberDirectory) *Members {
	return &Members{dir: dir}
}

func (m *Members) List(ctx context.Context) ([]models.UserMention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.list, nil
	}

	list, err := m.dir.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	m.loaded = true
	m.list = list
	return list, nil
}
