package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

// CarrierService справочник карго-фирм. Кэш опционален: без него сервис
// просто ходит в базу на каждый запрос.
type CarrierService struct {
	carrierRepo CarrierRepository
	cache       CarrierCache
	logger      *logrus.Logger
}

func NewCarrierService(u uow.UOW, cache CarrierCache, logger *logrus.Logger) (*CarrierService, error) {
	carrierRepo, err := uow.GetRepositoryAs[CarrierRepository](u, uow.RepositoryName(repoargs.CarrierRepoName))
	if err != nil {
		return nil, err
	}
	return &CarrierService{
		carrierRepo: carrierRepo,
		cache:       cache,
		logger:      logger,
	}, nil
}

// GetActive возвращает активные фирмы. Промах или ошибка кэша прозрачно
// уводят в базу.
func (s *CarrierService) GetActive(ctx context.Context) ([]domain.Carrier, error) {
	if s.cache != nil {
		carriers, cacheErr := s.cache.Get(ctx)
		if cacheErr == nil && carriers != nil {
			return carriers, nil
		}
		if cacheErr != nil {
			s.logger.WithError(cacheErr).Warn("carrier cache read failed")
		}
	}

	carriers, err := s.carrierRepo.GetActive(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, carriers); cacheErr != nil {
			s.logger.WithError(cacheErr).Warn("carrier cache write failed")
		}
	}
	return carriers, nil
}

func (s *CarrierService) FindByID(ctx context.Context, id int64) (*domain.Carrier, error) {
	carrier, err := s.carrierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return carrier, nil
}

func (s *CarrierService) Create(ctx context.Context, args repoargs.CarrierCreate) (*domain.Carrier, error) {
	carrier, err := s.carrierRepo.Create(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	s.invalidate(ctx)
	return carrier, nil
}

func (s *CarrierService) Update(ctx context.Context, args repoargs.CarrierUpdate) (*domain.Carrier, error) {
	carrier, err := s.carrierRepo.Update(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	s.invalidate(ctx)
	return carrier, nil
}

func (s *CarrierService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("carrier cache invalidation failed")
	}
}
