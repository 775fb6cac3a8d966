package service

import (
	"context"
	"io"
	"testing"
	"time"

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

type DepositServiceTestSuite struct {
	suite.Suite
	mockCtrl             *gomock.Controller
	mockUOW              *uowmocks.MockUOW
	mockTX               *uowmocks.MockTX
	mockDepositRepo      *mocks.MockDepositRepository
	mockUserRepo         *mocks.MockUserRepository
	mockTransRepo        *mocks.MockTransactionRepository
	mockNotificationRepo *mocks.MockNotificationRepository
	service              *DepositService
}

func TestDepositServiceSuite(t *testing.T) {
	suite.Run(t, new(DepositServiceTestSuite))
}

func (s *DepositServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockDepositRepo = mocks.NewMockDepositRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockTransRepo = mocks.NewMockTransactionRepository(s.mockCtrl)
	s.mockNotificationRepo = mocks.NewMockNotificationRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.DepositRepoName)).
		Return(s.mockDepositRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotificationRepo, nil).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.service, err = NewDepositService(s.mockUOW, l)
	s.Require().NoError(err)
}

func (s *DepositServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *DepositServiceTestSuite) TestCreateRequest() {
	var userID int64 = 123
	amount := decimal.NewFromInt(1000)
	paymentDate := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	s.mockDepositRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.DepositCreate) (*domain.DepositRequest, error) {
			s.NotEmpty(args.ID)
			s.Equal(userID, args.UserID)
			s.True(amount.Equal(args.Amount))
			s.Equal("Ahmet Yılmaz", args.SenderName)
			s.Equal(paymentDate, args.PaymentDate)
			return &domain.DepositRequest{
				ID:     args.ID,
				UserID: args.UserID,
				Amount: args.Amount,
				Status: domain.DepositStatusPending,
			}, nil
		})

	deposit, err := s.service.CreateRequest(s.T().Context(), CreateDepositArgs{
		UserID:      userID,
		Amount:      amount,
		SenderName:  "Ahmet Yılmaz",
		Description: "Havale",
		PaymentDate: &paymentDate,
	})
	s.Require().NoError(err)
	s.Equal(domain.DepositStatusPending, deposit.Status)
}

func (s *DepositServiceTestSuite) TestCreateRequest_InvalidAmount() {
	_, err := s.service.CreateRequest(s.T().Context(), CreateDepositArgs{
		UserID: 123,
		Amount: decimal.NewFromInt(-5),
	})
	s.Require().ErrorIs(err, domain.ErrInvalidAmount)
}

func (s *DepositServiceTestSuite) TestApprove() {
	var userID int64 = 123
	var adminID int64 = 7
	depositID := "dep-001"
	amount := decimal.NewFromInt(1000)

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.DepositRepoName)).
		Return(s.mockDepositRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransRepo, nil)

	s.mockDepositRepo.EXPECT().MarkProcessed(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.DepositMarkProcessed) (*domain.DepositRequest, error) {
			s.Equal(depositID, args.ID)
			s.Equal(domain.DepositStatusApproved, args.Status)
			s.Equal(adminID, args.AdminID)
			return &domain.DepositRequest{
				ID:          depositID,
				UserID:      userID,
				Amount:      amount,
				Description: "Havale",
				Status:      domain.DepositStatusApproved,
			}, nil
		})

	// зачисление идет в той же транзакции, что и смена статуса
	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), userID, amount).
		Return(&repoargs.BalanceChange{
			Before: decimal.Zero,
			After:  amount,
		}, nil)

	s.mockTransRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
			s.Equal(domain.TransactionDeposit, args.Type)
			s.True(amount.Equal(args.Amount))
			s.Require().NotNil(args.DepositRequestID)
			s.Equal(depositID, *args.DepositRequestID)
			return &domain.Transaction{
				ID:            args.ID,
				Amount:        args.Amount,
				BalanceBefore: args.BalanceBefore,
				BalanceAfter:  args.BalanceAfter,
			}, nil
		})

	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.NotificationCreate) error {
			s.Equal(userID, args.UserID)
			s.Equal(domain.NotificationSuccess, args.Type)
			s.Equal("Bakiye Yükleme Onaylandı", args.Title)
			return nil
		})

	approval, err := s.service.Approve(s.T().Context(), depositID, adminID, nil)
	s.Require().NoError(err)
	s.Equal(domain.DepositStatusApproved, approval.Deposit.Status)
	// админу возвращается баланс уже после зачисления
	s.True(amount.Equal(approval.NewBalance))
}

func (s *DepositServiceTestSuite) TestApprove_AlreadyProcessed() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.DepositRepoName)).
		Return(s.mockDepositRepo, nil)

	// заявка уже в терминальном статусе, до баланса дело не доходит
	s.mockDepositRepo.EXPECT().MarkProcessed(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDepositProcessed)

	_, err := s.service.Approve(s.T().Context(), "dep-001", 7, nil)
	s.Require().ErrorIs(err, domain.ErrDepositProcessed)
}

func (s *DepositServiceTestSuite) TestReject() {
	var userID int64 = 123
	adminNote := "Dekont bulunamadı"

	s.mockDepositRepo.EXPECT().MarkProcessed(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.DepositMarkProcessed) (*domain.DepositRequest, error) {
			s.Equal(domain.DepositStatusRejected, args.Status)
			s.Require().NotNil(args.AdminNote)
			s.Equal(adminNote, *args.AdminNote)
			return &domain.DepositRequest{
				ID:     "dep-001",
				UserID: userID,
				Amount: decimal.NewFromInt(1000),
				Status: domain.DepositStatusRejected,
			}, nil
		})

	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.NotificationCreate) error {
			s.Equal(domain.NotificationWarning, args.Type)
			s.Contains(args.Message, "reddedildi")
			s.Contains(args.Message, "Not: "+adminNote)
			return nil
		})

	deposit, err := s.service.Reject(s.T().Context(), "dep-001", 7, &adminNote)
	s.Require().NoError(err)
	s.Equal(domain.DepositStatusRejected, deposit.Status)
}
