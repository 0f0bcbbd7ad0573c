package storage

import (
	"sync"

	"voting-settlement/models"
)

type MemoryStore struct {
	mu          sync.RWMutex
	settlements []*models.Settlement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settlements: make([]*models.Settlement, 0)}
}

func (m *MemoryStore) Put(settlement *models.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *settlement
	m.settlements = append(m.settlements, &copied)
	return nil
}

func (m *MemoryStore) ForProposal(proposalID uint64) ([]*models.Settlement, error) {
	all, _ := m.List()
	return filterProposal(all, proposalID), nil
}

func (m *MemoryStore) List() ([]*models.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Settlement, len(m.settlements))
	for i, s := range m.settlements {
		copied := *s
		out[i] = &copied
	}
	sortBySettledAt(out)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
