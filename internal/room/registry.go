package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
)

// CreateSpec is the metadata a creator supplies for a new room. All fields
// are opaque payload: stored and echoed, never interpreted.
type CreateSpec struct {
	Name         string
	Product      domain.Product
	StreamURL    string
	HostClientID string
}

// Registry maps room ids to their State. It is constructed once and passed
// by reference to everything that needs it; there is no ambient global, so
// parallel tests run independent registries.
type Registry struct {
	mu     sync.RWMutex
	clock  Clock
	limits Limits
	rooms  map[string]*State
}

func NewRegistry(clock Clock, limits Limits) *Registry {
	return &Registry{
		clock:  clock,
		limits: limits.withDefaults(),
		rooms:  make(map[string]*State),
	}
}

// Create allocates a room and its server-issued host key. The key is
// returned only here; presenting it on join is the sole way to obtain the
// host role. Create always succeeds and the room is immediately listable.
func (r *Registry) Create(spec CreateSpec) (*State, string) {
	room := domain.Room{
		ID:           uuid.New().String(),
		Name:         spec.Name,
		Product:      spec.Product,
		StreamURL:    spec.StreamURL,
		HostClientID: spec.HostClientID,
		CreatedAt:    r.clock.Now(),
	}
	hostKey := uuid.New().String()
	st := newState(room, hostKey, r.clock, r.limits)

	r.mu.Lock()
	r.rooms[room.ID] = st
	r.mu.Unlock()

	return st, hostKey
}

// Get looks up a room's State by id.
func (r *Registry) Get(id string) (*State, error) {
	r.mu.RLock()
	st, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return st, nil
}

// List returns a snapshot of every room's public metadata. It never blocks
// subsequent registration.
func (r *Registry) List() []domain.Room {
	r.mu.RLock()
	states := make([]*State, 0, len(r.rooms))
	for _, st := range r.rooms {
		states = append(states, st)
	}
	r.mu.RUnlock()

	rooms := make([]domain.Room, len(states))
	for i, st := range states {
		rooms[i] = st.Snapshot()
	}
	return rooms
}
