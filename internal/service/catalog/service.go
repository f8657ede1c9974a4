package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-StudioBooking/internal/service/catalog/models"
)

// Service сервис чтения каталога для клиентов API
type Service struct {
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// GetLocation получает локацию с расписанием и активными сотрудниками
func (s *Service) GetLocation(ctx context.Context, id int64) (*models.LocationResponse, error) {
	s.logger.Info("GetLocation: fetching location id=%d", id)

	loc, err := s.catalogRepo.GetLocation(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrLocationNotFound) {
			s.logger.Warn("GetLocation: location id=%d not found", id)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityLocation, ID: id}
		}
		s.logger.Error("GetLocation: repository error for location id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetLocation - repository error: %v", ErrInternal, err)
	}

	staff, err := s.catalogRepo.ListActiveStaff(ctx, &loc.ID)
	if err != nil {
		s.logger.Error("GetLocation: failed to list staff of location id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetLocation - list staff: %v", ErrInternal, err)
	}

	s.logger.Info("GetLocation: successfully fetched location id=%d with %d staff", id, len(staff))
	return models.FromDomainLocation(loc, staff), nil
}
