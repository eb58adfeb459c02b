package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/razecmarketing/schedbank/internal/domain"
)

// transferStore implements domain.TransferStore in process memory
type transferStore struct {
	mu        sync.RWMutex
	transfers map[string]*domain.Transfer
}

// NewTransferStore creates an empty in-memory transfer store
func NewTransferStore() domain.TransferStore {
	return &transferStore{transfers: make(map[string]*domain.Transfer)}
}

// Save inserts or replaces a transfer. Transfers are immutable, so the pointer is shared.
func (s *transferStore) Save(ctx context.Context, t *domain.Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.IsPersisted() {
		return domain.NewConstructionError(domain.CodeMissingField, "transfer id is required to save")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers[t.ID()] = t
	return nil
}

// FindByID retrieves a transfer by its ID
func (s *transferStore) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transfers[id]
	if !ok {
		return nil, domain.NewTransferNotFoundError(id)
	}
	return t, nil
}

// FindAll returns every transfer ordered by transfer date, then ID
func (s *transferStore) FindAll(ctx context.Context) ([]*domain.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	transfers := make([]*domain.Transfer, 0, len(s.transfers))
	for _, t := range s.transfers {
		transfers = append(transfers, t)
	}
	s.mu.RUnlock()

	sort.Slice(transfers, func(i, j int) bool {
		a, b := transfers[i], transfers[j]
		if !a.TransferDate().Equal(b.TransferDate()) {
			return a.TransferDate().Before(b.TransferDate())
		}
		return a.ID() < b.ID()
	})
	return transfers, nil
}

// Delete removes a transfer by its ID
func (s *transferStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transfers[id]; !ok {
		return domain.NewTransferNotFoundError(id)
	}
	delete(s.transfers, id)
	return nil
}

// DeleteAll removes every transfer
func (s *transferStore) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = make(map[string]*domain.Transfer)
	return nil
}
