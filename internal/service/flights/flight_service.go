package flights

import (
	"context"

	"github.com/google/uuid"
	"github.com/vporoshin/aeroreserve/internal/domain"
	"github.com/vporoshin/aeroreserve/internal/repository"
)

// FlightUseCase is the read-only search collaborator. It never mutates seat
// counts; all mutation goes through the ledger repository.
type FlightUseCase interface {
	List(ctx context.Context) ([]domain.FlightInstance, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FlightInstance, error)
}

type InstanceCache interface {
	GetInstances(ctx context.Context) ([]domain.FlightInstance, error)
	SetInstances(ctx context.Context, instances []domain.FlightInstance) error
}

type FlightService struct {
	ledger repository.LedgerRepository
	cache  InstanceCache
}

func NewFlightService(ledger repository.LedgerRepository, cache InstanceCache) *FlightService {
	return &FlightService{ledger: ledger, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.FlightInstance, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetInstances(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	instances, err := s.ledger.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetInstances(ctx, instances)
	}
	return instances, nil
}

// GetByID always reads through to the ledger; a cached seat count would be
// stale the moment a hold lands.
func (s *FlightService) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlightInstance, error) {
	return s.ledger.GetByID(ctx, id)
}

var _ FlightUseCase = (*FlightService)(nil)
