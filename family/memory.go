package family

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Store for tests and the no-database fallback.
type Memory struct {
	mu      sync.RWMutex
	members map[string]Member
}

func NewMemory() *Memory {
	return &Memory{members: make(map[string]Member)}
}

func (m *Memory) ListMembers(_ context.Context) ([]Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Member, 0, len(m.members))
	for _, member := range m.members {
		result = append(result, member)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MemberID < result[j].MemberID })
	return result, nil
}

func (m *Memory) GetMember(_ context.Context, id string) (*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	member, ok := m.members[id]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (m *Memory) CreateMember(_ context.Context, member Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.MemberID] = member
	return nil
}

func (m *Memory) UpdateMember(_ context.Context, member Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.MemberID] = member
	return nil
}

func (m *Memory) DeleteMember(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, id)
	return nil
}
