package platform

import (
	"context"
	"fmt"
	"sync"
)

// MockThreadCreator mints synthetic thread ids. Tests use it directly;
// the process also wires it when no real platform adapter is attached.
type MockThreadCreator struct {
	mu      sync.Mutex
	next    int
	Created map[string][]string // channel id -> minted thread ids
	Err     error               // returned instead of minting when set
}

// NewMockThreadCreator creates an empty mock.
func NewMockThreadCreator() *MockThreadCreator {
	return &MockThreadCreator{Created: make(map[string][]string)}
}

// CreateThreads implements ThreadCreator.
func (m *MockThreadCreator) CreateThreads(ctx context.Context, channelID string, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, n)
	for i := range ids {
		m.next++
		ids[i] = fmt.Sprintf("%s-thread-%d", channelID, m.next)
	}
	m.Created[channelID] = append(m.Created[channelID], ids...)
	return ids, nil
}
