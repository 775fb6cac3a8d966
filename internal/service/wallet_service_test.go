package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service/mocks"
	"github.com/kargopanel/backend/pkg/uow"
	uowmocks "github.com/kargopanel/backend/pkg/uow/mocks"
)

type WalletServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockUOW       *uowmocks.MockUOW
	mockTX        *uowmocks.MockTX
	mockUserRepo  *mocks.MockUserRepository
	mockTransRepo *mocks.MockTransactionRepository
	service       *WalletService
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockTransRepo = mocks.NewMockTransactionRepository(s.mockCtrl)

	// Настроить возврат репозиториев в сервисе при инициализации
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransRepo, nil).AnyTimes()

	var err error
	s.service, err = NewWalletService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *WalletServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectTXRepos настраивает получение репозиториев из транзакции.
func (s *WalletServiceTestSuite) expectTXRepos() {
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransRepo, nil).AnyTimes()
}

// expectUOWDo прокидывает замыкание транзакции на mockTX.
func (s *WalletServiceTestSuite) expectUOWDo() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	)
}

func (s *WalletServiceTestSuite) TestCredit() {
	var userID int64 = 123
	amount := decimal.NewFromInt(500)
	depositID := "dep-001"

	change := repoargs.BalanceChange{
		Before: decimal.NewFromInt(100),
		After:  decimal.NewFromInt(600),
	}

	s.expectTXRepos()
	s.expectUOWDo()

	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), userID, amount).
		Return(&change, nil)

	s.mockTransRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
			// убеждаемся что журнал сходится с изменением баланса.
			s.Equal(userID, args.UserID)
			s.Equal(domain.TransactionDeposit, args.Type)
			s.True(amount.Equal(args.Amount))
			s.True(change.Before.Equal(args.BalanceBefore))
			s.True(change.After.Equal(args.BalanceAfter))
			s.Require().NotNil(args.DepositRequestID)
			s.Equal(depositID, *args.DepositRequestID)
			return &domain.Transaction{
				ID:     args.ID,
				UserID: args.UserID,
				Type:   args.Type,
				Amount: args.Amount,
			}, nil
		})

	transaction, err := s.service.Credit(s.T().Context(), userID, amount, "havale", &depositID)
	s.Require().NoError(err)
	s.Require().NotNil(transaction)
	s.True(amount.Equal(transaction.Amount))
}

func (s *WalletServiceTestSuite) TestCredit_InvalidAmount() {
	cases := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "zero", amount: decimal.Zero},
		{name: "negative", amount: decimal.NewFromInt(-10)},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.service.Credit(s.T().Context(), 123, t.amount, "havale", nil)
			s.Require().ErrorIs(err, domain.ErrInvalidAmount)
		})
	}
}

func (s *WalletServiceTestSuite) TestDebit() {
	var userID int64 = 123
	var orderID int64 = 42
	amount := decimal.NewFromInt(150)

	change := repoargs.BalanceChange{
		Before: decimal.NewFromInt(500),
		After:  decimal.NewFromInt(350),
	}

	s.expectTXRepos()
	s.expectUOWDo()

	// баланс меняется строго на отрицательную дельту
	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, delta decimal.Decimal) (*repoargs.BalanceChange, error) {
			s.True(amount.Neg().Equal(delta))
			return &change, nil
		})

	s.mockTransRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
			s.Equal(domain.TransactionPayment, args.Type)
			s.True(amount.Neg().Equal(args.Amount))
			s.Require().NotNil(args.OrderID)
			s.Equal(orderID, *args.OrderID)
			return &domain.Transaction{ID: args.ID, Amount: args.Amount}, nil
		})

	_, err := s.service.Debit(s.T().Context(), userID, amount, "kargo", &orderID)
	s.Require().NoError(err)
}

func (s *WalletServiceTestSuite) TestDebit_NotEnoughBalance() {
	s.expectTXRepos()
	s.expectUOWDo()

	// хранилище отклоняет уход в минус, запись в журнал не создается
	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), int64(123), gomock.Any()).
		Return(nil, domain.ErrNotEnoughBalance)

	_, err := s.service.Debit(s.T().Context(), 123, decimal.NewFromInt(1000), "kargo", nil)
	s.Require().ErrorIs(err, domain.ErrNotEnoughBalance)
}

func (s *WalletServiceTestSuite) TestAdjustManual() {
	var userID int64 = 123
	var adminID int64 = 7
	amount := decimal.NewFromInt(-50)

	change := repoargs.BalanceChange{
		Before: decimal.NewFromInt(200),
		After:  decimal.NewFromInt(150),
	}

	s.expectTXRepos()
	s.expectUOWDo()

	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), userID, amount).
		Return(&change, nil)

	s.mockTransRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
			s.Equal(domain.TransactionAdminAdjustment, args.Type)
			s.Contains(args.Description, "Admin düzeltmesi")
			s.Contains(args.Description, "admin #7")
			return &domain.Transaction{ID: args.ID, Amount: args.Amount}, nil
		})

	_, err := s.service.AdjustManual(s.T().Context(), userID, amount, "iade", adminID)
	s.Require().NoError(err)
}

func (s *WalletServiceTestSuite) TestAdjustManual_NegativeBalance() {
	s.expectTXRepos()
	s.expectUOWDo()

	s.mockUserRepo.EXPECT().
		AdjustBalance(gomock.Any(), int64(123), gomock.Any()).
		Return(nil, domain.ErrNotEnoughBalance)

	_, err := s.service.AdjustManual(s.T().Context(), 123, decimal.NewFromInt(-1000), "ceza", 7)
	s.Require().ErrorIs(err, domain.ErrNegativeBalance)
}

func (s *WalletServiceTestSuite) TestBalance() {
	cases := []struct {
		name        string
		balance     decimal.Decimal
		canShipment bool
	}{
		{name: "above minimum", balance: decimal.NewFromInt(250), canShipment: true},
		{name: "exactly minimum", balance: MinimumBalance, canShipment: true},
		{name: "below minimum", balance: decimal.NewFromFloat(99.99), canShipment: false},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockUserRepo.EXPECT().
				FindByID(gomock.Any(), int64(123)).
				Return(&domain.User{ID: 123, Balance: t.balance}, nil)

			balance, err := s.service.Balance(s.T().Context(), 123)
			s.Require().NoError(err)
			s.True(t.balance.Equal(balance.Balance))
			s.True(MinimumBalance.Equal(balance.MinimumBalance))
			s.Equal(t.canShipment, balance.CanCreateShipment)
		})
	}
}

func (s *WalletServiceTestSuite) TestBalance_UserNotFound() {
	s.mockUserRepo.EXPECT().
		FindByID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.Balance(s.T().Context(), 404)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}
