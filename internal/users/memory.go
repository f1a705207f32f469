package users

import (
	"context"
	"sync"

	"github.com/crudusers/users-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by unit tests and as a
// fallback when MongoDB is unreachable at startup. Documents are stored as
// copies so callers never alias stored state.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*models.User
	order []primitive.ObjectID // insertion order, like a collection's natural order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*models.User)}
}

func (m *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(m.store))
	for _, id := range m.order {
		out = append(out, m.store[id].Clone())
	}
	return out, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.store[id]; ok {
		return u.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) Insert(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, ok := m.store[u.ID]; !ok {
		m.order = append(m.order, u.ID)
	}
	m.store[u.ID] = u.Clone()
	return nil
}

func (m *MemoryRepository) Save(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.ID]; !ok {
		return ErrNotFound
	}
	m.store[u.ID] = u.Clone()
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
