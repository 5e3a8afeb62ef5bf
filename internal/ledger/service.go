package ledger

import (
	"context"
	"fmt"

	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes read access to the ledger history.
type Service interface {
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	events, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger events")
	}
	return events, nil
}
