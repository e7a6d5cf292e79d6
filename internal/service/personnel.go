package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravt/eventops-payments/internal/model"
)

// PersonnelStore is the persistence collaborator for staff records and their
// budget-item assignments.
type PersonnelStore interface {
	Create(ctx context.Context, person model.Personnel) (*model.Personnel, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error)
	List(ctx context.Context) ([]model.Personnel, error)
	Update(ctx context.Context, person model.Personnel) (*model.Personnel, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceBudgetItemAssignments(ctx context.Context, budgetItemID uuid.UUID, personnelIDs []uuid.UUID) error
	ListForBudgetItem(ctx context.Context, budgetItemID uuid.UUID) ([]model.Personnel, error)
}

type PersonnelService struct {
	store PersonnelStore
	log   zerolog.Logger
}

func NewPersonnelService(store PersonnelStore, log zerolog.Logger) *PersonnelService {
	return &PersonnelService{store: store, log: log}
}

func (s *PersonnelService) Create(ctx context.Context, person model.Personnel) (*model.Personnel, error) {
	if err := model.Validate(person); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.Create(ctx, person)
}

func (s *PersonnelService) Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error) {
	return s.store.Get(ctx, id)
}

func (s *PersonnelService) List(ctx context.Context) ([]model.Personnel, error) {
	return s.store.List(ctx)
}

func (s *PersonnelService) Update(ctx context.Context, person model.Personnel) (*model.Personnel, error) {
	if err := model.Validate(person); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.Update(ctx, person)
}

func (s *PersonnelService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// AssignToBudgetItem replaces the full personnel set of a budget item. A
// duplicated id in the new set is rejected before the write.
func (s *PersonnelService) AssignToBudgetItem(ctx context.Context, budgetItemID uuid.UUID, personnelIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(personnelIDs))
	for _, id := range personnelIDs {
		if id == uuid.Nil {
			return fmt.Errorf("%w: personnel_id is required", ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: personnel %s listed twice", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return s.store.ReplaceBudgetItemAssignments(ctx, budgetItemID, personnelIDs)
}

func (s *PersonnelService) ForBudgetItem(ctx context.Context, budgetItemID uuid.UUID) ([]model.Personnel, error) {
	return s.store.ListForBudgetItem(ctx, budgetItemID)
}
