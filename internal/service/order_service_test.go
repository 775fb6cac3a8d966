package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service/mocks"
	"github.com/kargopanel/backend/pkg/uow"
	uowmocks "github.com/kargopanel/backend/pkg/uow/mocks"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl             *gomock.Controller
	mockUOW              *uowmocks.MockUOW
	mockTX               *uowmocks.MockTX
	mockOrderRepo        *mocks.MockOrderRepository
	mockCarrierRepo      *mocks.MockCarrierRepository
	mockUserRepo         *mocks.MockUserRepository
	mockTransRepo        *mocks.MockTransactionRepository
	mockNotificationRepo *mocks.MockNotificationRepository
	service              *OrderService
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockCarrierRepo = mocks.NewMockCarrierRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockTransRepo = mocks.NewMockTransactionRepository(s.mockCtrl)
	s.mockNotificationRepo = mocks.NewMockNotificationRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.CarrierRepoName)).
		Return(s.mockCarrierRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotificationRepo, nil).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.service, err = NewOrderService(s.mockUOW, l)
	s.Require().NoError(err)
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrderServiceTestSuite) expectUOWDo(times int) {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	).Times(times)
}

func (s *OrderServiceTestSuite) activeCarrier() *domain.Carrier {
	return &domain.Carrier{
		ID:       1,
		Name:     "Aras Kargo",
		Price:    decimal.NewFromInt(150),
		IsActive: true,
	}
}

func (s *OrderServiceTestSuite) createArgs(paymentType domain.PaymentType) CreateOrderArgs {
	return CreateOrderArgs{
		UserID: 123,
		Recipient: domain.Recipient{
			Name:     "Mehmet Demir",
			Phone:    "+905551112233",
			City:     "İstanbul",
			District: "Kadıköy",
			Address:  "Moda Cad. 15",
		},
		CarrierID:   1,
		Weight:      decimal.NewFromFloat(2.5),
		Desi:        3,
		PaymentType: paymentType,
	}
}

func (s *OrderServiceTestSuite) TestCreate_Prepaid() {
	carrier := s.activeCarrier()
	args := s.createArgs(domain.PaymentPrepaid)

	s.mockCarrierRepo.EXPECT().FindByID(gomock.Any(), carrier.ID).Return(carrier, nil)
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), args.UserID).
		Return(&domain.User{ID: args.UserID, Balance: decimal.NewFromInt(500)}, nil)

	s.expectUOWDo(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).Times(2)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransRepo, nil)

	var orderCode string
	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, create repoargs.OrderCreate) (*domain.Order, error) {
			orderCode = create.OrderCode
			s.True(strings.HasPrefix(create.OrderCode, "KRG-"))
			s.True(strings.HasPrefix(create.TrackingCode, "TRK"))
			s.Equal(carrier.Name, create.CarrierName)
			s.True(carrier.Price.Equal(create.Price))
			s.Equal("İstanbul", create.CurrentLocation.City)
			// таймлайн начинается с события created
			s.Equal(domain.OrderStatusCreated, create.InitialEvent.Status)
			return &domain.Order{
				ID:           10,
				OrderCode:    create.OrderCode,
				TrackingCode: create.TrackingCode,
				UserID:       create.UserID,
				CarrierName:  create.CarrierName,
				Price:        create.Price,
				Status:       domain.OrderStatusCreated,
			}, nil
		})

	// списание равно цене тарифа и привязано к заказу
	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), args.UserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, delta decimal.Decimal) (*repoargs.BalanceChange, error) {
			s.True(carrier.Price.Neg().Equal(delta))
			return &repoargs.BalanceChange{
				Before: decimal.NewFromInt(500),
				After:  decimal.NewFromInt(350),
			}, nil
		})

	s.mockTransRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, create repoargs.TransactionCreate) (*domain.Transaction, error) {
			s.Equal(domain.TransactionPayment, create.Type)
			s.Require().NotNil(create.OrderID)
			s.Equal(int64(10), *create.OrderID)
			s.Contains(create.Description, orderCode)
			return &domain.Transaction{ID: create.ID}, nil
		})

	s.mockUserRepo.EXPECT().IncrementShipments(gomock.Any(), args.UserID).Return(nil)

	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, create repoargs.NotificationCreate) error {
			s.Equal("Yeni Gönderi Oluşturuldu", create.Title)
			return nil
		})

	order, err := s.service.Create(s.T().Context(), args)
	s.Require().NoError(err)
	s.Equal(orderCode, order.OrderCode)
}

func (s *OrderServiceTestSuite) TestCreate_InactiveCarrier() {
	carrier := s.activeCarrier()
	carrier.IsActive = false

	s.mockCarrierRepo.EXPECT().FindByID(gomock.Any(), carrier.ID).Return(carrier, nil)

	_, err := s.service.Create(s.T().Context(), s.createArgs(domain.PaymentPrepaid))
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *OrderServiceTestSuite) TestCreate_NotEnoughBalance() {
	carrier := s.activeCarrier()

	s.mockCarrierRepo.EXPECT().FindByID(gomock.Any(), carrier.ID).Return(carrier, nil)
	// баланс ниже цены тарифа, до транзакции дело не доходит
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(123)).
		Return(&domain.User{ID: 123, Balance: decimal.NewFromInt(149)}, nil)

	_, err := s.service.Create(s.T().Context(), s.createArgs(domain.PaymentPrepaid))
	s.Require().ErrorIs(err, domain.ErrNotEnoughBalance)
}

func (s *OrderServiceTestSuite) TestCreate_RetryOnDuplicateCode() {
	carrier := s.activeCarrier()
	args := s.createArgs(domain.PaymentCOD)

	s.mockCarrierRepo.EXPECT().FindByID(gomock.Any(), carrier.ID).Return(carrier, nil)

	s.expectUOWDo(2)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).Times(2)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil)

	codes := make(map[string]struct{})
	gomock.InOrder(
		// первая попытка уперлась в коллизию кода
		s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, create repoargs.OrderCreate) (*domain.Order, error) {
				codes[create.OrderCode] = struct{}{}
				return nil, domain.ErrDuplicateKey
			}),
		s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, create repoargs.OrderCreate) (*domain.Order, error) {
				codes[create.OrderCode] = struct{}{}
				return &domain.Order{
					ID:        10,
					OrderCode: create.OrderCode,
					UserID:    create.UserID,
				}, nil
			}),
	)

	s.mockUserRepo.EXPECT().IncrementShipments(gomock.Any(), args.UserID).Return(nil)
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	order, err := s.service.Create(s.T().Context(), args)
	s.Require().NoError(err)
	s.NotNil(order)
	// на каждой попытке генерируется новый код
	s.Len(codes, 2)
}

func (s *OrderServiceTestSuite) TestCreate_CodeGenerationExhausted() {
	carrier := s.activeCarrier()

	s.mockCarrierRepo.EXPECT().FindByID(gomock.Any(), carrier.ID).Return(carrier, nil)

	s.expectUOWDo(maxCodeAttempts)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).Times(maxCodeAttempts)

	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey).Times(maxCodeAttempts)

	_, err := s.service.Create(s.T().Context(), s.createArgs(domain.PaymentCOD))
	s.Require().ErrorIs(err, domain.ErrCodeGenerationExhausted)
}

func (s *OrderServiceTestSuite) TestUpdateStatus() {
	orderCode := "KRG-202403-0001"

	s.mockOrderRepo.EXPECT().FindByOrderCode(gomock.Any(), orderCode).
		Return(&domain.Order{
			ID:        10,
			OrderCode: orderCode,
			UserID:    123,
			Status:    domain.OrderStatusInTransit,
		}, nil)

	s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, update repoargs.OrderStatusUpdate) (*domain.Order, error) {
			s.Equal(orderCode, update.OrderCode)
			s.Equal(domain.OrderStatusDelivered, update.Status)
			s.Equal("Teslim Edildi", update.StatusText)
			// при пустом описании событие получает текст статуса
			s.Equal("Teslim Edildi", update.Event.Description)
			return &domain.Order{
				ID:        10,
				OrderCode: orderCode,
				UserID:    123,
				Status:    update.Status,
			}, nil
		})

	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, create repoargs.NotificationCreate) error {
			// доставка уведомляется как success, остальное как info
			s.Equal(domain.NotificationSuccess, create.Type)
			s.Contains(create.Message, orderCode)
			s.Contains(create.Message, "Teslim Edildi")
			return nil
		})

	order, err := s.service.UpdateStatus(s.T().Context(), UpdateStatusArgs{
		OrderCode: orderCode,
		Status:    domain.OrderStatusDelivered,
	})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusDelivered, order.Status)
}

func (s *OrderServiceTestSuite) TestUpdateStatus_NotFound() {
	s.mockOrderRepo.EXPECT().FindByOrderCode(gomock.Any(), "KRG-000000-0000").
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.UpdateStatus(s.T().Context(), UpdateStatusArgs{
		OrderCode: "KRG-000000-0000",
		Status:    domain.OrderStatusPicked,
	})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *OrderServiceTestSuite) TestStats() {
	s.mockOrderRepo.EXPECT().Stats(gomock.Any()).Return(&repoargs.OrderStats{
		TotalShipments:     100,
		ActiveShipments:    30,
		DeliveredShipments: 70,
		TotalRevenue:       decimal.NewFromInt(15000),
	}, nil)
	s.mockUserRepo.EXPECT().CountUsers(gomock.Any()).Return(int64(42), nil)

	stats, err := s.service.Stats(s.T().Context())
	s.Require().NoError(err)
	s.Equal(int64(100), stats.TotalShipments)
	s.Equal(int64(42), stats.TotalUsers)
	s.True(decimal.NewFromInt(15000).Equal(stats.TotalRevenue))
}
