package connections

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agewise-dev/agewise/internal/model"
)

// MemoryStore is an in-memory connection store for tests and single-tenant
// runs configured from a file.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[int]model.Connection
	seq  int
}

// NewMemoryStore creates a store seeded with the given connections. Seeded
// connections without an id are assigned one.
func NewMemoryStore(seed ...model.Connection) *MemoryStore {
	s := &MemoryStore{byID: make(map[int]model.Connection)}
	for _, conn := range seed {
		if conn.ID == 0 {
			s.seq++
			conn.ID = s.seq
		} else if conn.ID > s.seq {
			s.seq = conn.ID
		}
		s.byID[conn.ID] = conn
	}
	return s
}

func (s *MemoryStore) ByID(_ context.Context, id int) (model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn, ok := s.byID[id]
	if !ok {
		return model.Connection{}, fmt.Errorf("connection %d not found", id)
	}
	return conn, nil
}

func (s *MemoryStore) ByTenantID(_ context.Context, tenantID string) (model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conn := range s.byID {
		if conn.TenantID == tenantID {
			return conn, nil
		}
	}
	return model.Connection{}, fmt.Errorf("connection %s not found", tenantID)
}

func (s *MemoryStore) AllActive(_ context.Context) ([]model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var conns []model.Connection
	for _, conn := range s.byID {
		if conn.Active {
			conns = append(conns, conn)
		}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return conns, nil
}

// Save inserts or replaces a connection, assigning an id when missing.
func (s *MemoryStore) Save(_ context.Context, conn model.Connection) (model.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn.ID == 0 {
		s.seq++
		conn.ID = s.seq
	} else if conn.ID > s.seq {
		s.seq = conn.ID
	}
	s.byID[conn.ID] = conn
	return conn, nil
}
