package simulation

import (
	"sync"

	"github.com/google/uuid"
)

// state is the simulation's own belief of who holds what. It can lag behind the
// database when workers race on the same item; the ledger then rejects the stale move.
type state struct {
	mu      sync.RWMutex
	users   []uuid.UUID
	items   []uuid.UUID
	holders map[uuid.UUID]uuid.UUID
}

func newState(users, items []uuid.UUID) *state {
	return &state{
		users:   users,
		items:   items,
		holders: make(map[uuid.UUID]uuid.UUID, len(items)),
	}
}

func (s *state) holderOf(itemID uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holder, ok := s.holders[itemID]

	return holder, ok
}

func (s *state) borrowed(itemID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holders[itemID] = userID
}

func (s *state) returned(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.holders, itemID)
}

func (s *state) lentOut() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.holders)
}
