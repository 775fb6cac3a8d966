package service

import (
	"io"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service/mocks"
	"github.com/kargopanel/backend/pkg/uow"
	uowmocks "github.com/kargopanel/backend/pkg/uow/mocks"
)

type CarrierServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockCarrierRepo *mocks.MockCarrierRepository
	mockCache       *mocks.MockCarrierCache
	service         *CarrierService
}

func TestCarrierServiceSuite(t *testing.T) {
	suite.Run(t, new(CarrierServiceTestSuite))
}

func (s *CarrierServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockCarrierRepo = mocks.NewMockCarrierRepository(s.mockCtrl)
	s.mockCache = mocks.NewMockCarrierCache(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.CarrierRepoName)).
		Return(s.mockCarrierRepo, nil).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.service, err = NewCarrierService(s.mockUOW, s.mockCache, l)
	s.Require().NoError(err)
}

func (s *CarrierServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CarrierServiceTestSuite) carriers() []domain.Carrier {
	return []domain.Carrier{
		{ID: 1, Name: "Aras Kargo", Price: decimal.NewFromInt(150), IsActive: true},
		{ID: 2, Name: "MNG Kargo", Price: decimal.NewFromInt(120), IsActive: true},
	}
}

func (s *CarrierServiceTestSuite) TestGetActive_CacheHit() {
	carriers := s.carriers()
	s.mockCache.EXPECT().Get(gomock.Any()).Return(carriers, nil)

	result, err := s.service.GetActive(s.T().Context())
	s.Require().NoError(err)
	s.Equal(carriers, result)
}

func (s *CarrierServiceTestSuite) TestGetActive_CacheMiss() {
	carriers := s.carriers()

	// nil без ошибки означает промах
	s.mockCache.EXPECT().Get(gomock.Any()).Return(nil, nil)
	s.mockCarrierRepo.EXPECT().GetActive(gomock.Any()).Return(carriers, nil)
	s.mockCache.EXPECT().Set(gomock.Any(), carriers).Return(nil)

	result, err := s.service.GetActive(s.T().Context())
	s.Require().NoError(err)
	s.Equal(carriers, result)
}

func (s *CarrierServiceTestSuite) TestGetActive_CacheErrorFallsThrough() {
	carriers := s.carriers()

	// ошибки кэша не видны клиенту
	s.mockCache.EXPECT().Get(gomock.Any()).Return(nil, errors.New("redis down"))
	s.mockCarrierRepo.EXPECT().GetActive(gomock.Any()).Return(carriers, nil)
	s.mockCache.EXPECT().Set(gomock.Any(), carriers).Return(errors.New("redis down"))

	result, err := s.service.GetActive(s.T().Context())
	s.Require().NoError(err)
	s.Equal(carriers, result)
}

func (s *CarrierServiceTestSuite) TestGetActive_NoCache() {
	l := logrus.New()
	l.SetOutput(io.Discard)

	service, err := NewCarrierService(s.mockUOW, nil, l)
	s.Require().NoError(err)

	carriers := s.carriers()
	s.mockCarrierRepo.EXPECT().GetActive(gomock.Any()).Return(carriers, nil)

	result, getErr := service.GetActive(s.T().Context())
	s.Require().NoError(getErr)
	s.Equal(carriers, result)
}

func (s *CarrierServiceTestSuite) TestCreate_InvalidatesCache() {
	args := repoargs.CarrierCreate{
		Name:         "Yurtiçi Kargo",
		Price:        decimal.NewFromInt(130),
		DeliveryTime: "1-2 gün",
	}

	s.mockCarrierRepo.EXPECT().Create(gomock.Any(), args).
		Return(&domain.Carrier{ID: 3, Name: args.Name, Price: args.Price, IsActive: true}, nil)
	s.mockCache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	carrier, err := s.service.Create(s.T().Context(), args)
	s.Require().NoError(err)
	s.Equal(int64(3), carrier.ID)
}

func (s *CarrierServiceTestSuite) TestUpdate_InvalidatesCache() {
	isActive := false
	args := repoargs.CarrierUpdate{ID: 1, IsActive: &isActive}

	s.mockCarrierRepo.EXPECT().Update(gomock.Any(), args).
		Return(&domain.Carrier{ID: 1, Name: "Aras Kargo", IsActive: false}, nil)
	s.mockCache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	carrier, err := s.service.Update(s.T().Context(), args)
	s.Require().NoError(err)
	s.False(carrier.IsActive)
}
