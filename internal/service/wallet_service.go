package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

// MinimumBalance минимальный остаток, при котором юзеру доступно создание
// отправлений.
var MinimumBalance = decimal.NewFromInt(100)

// WalletService единственная точка изменения баланса юзера и ведения журнала
// транзакций.
type WalletService struct {
	uow       uow.UOW
	userRepo  UserRepository
	transRepo TransactionRepository
}

func NewWalletService(u uow.UOW) (*WalletService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	transRepo, transRepoErr :=
		uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr
	}
	return &WalletService{
		uow:       u,
		userRepo:  userRepo,
		transRepo: transRepo,
	}, nil
}

// Credit зачисляет amount на баланс юзера и создает запись типа deposit.
// Сумма должна быть строго положительной.
func (s *WalletService) Credit(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	description string,
	depositRequestID *string,
) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var opErr error
		transaction, opErr = applyBalanceOp(c, tx, balanceOpArgs{
			UserID:           userID,
			Delta:            amount,
			Type:             domain.TransactionDeposit,
			Description:      description,
			DepositRequestID: depositRequestID,
		})
		return opErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("crediting user %d: %w", userID, txErr)
	}
	return transaction, nil
}

// Debit списывает amount с баланса юзера и создает запись типа payment.
// Если средств не хватает, возвращает domain.ErrNotEnoughBalance и ничего
// не меняет.
func (s *WalletService) Debit(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	description string,
	orderID *int64,
) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var opErr error
		transaction, opErr = applyBalanceOp(c, tx, balanceOpArgs{
			UserID:      userID,
			Delta:       amount.Neg(),
			Type:        domain.TransactionPayment,
			Description: description,
			OrderID:     orderID,
		})
		return opErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("debiting user %d: %w", userID, txErr)
	}
	return transaction, nil
}

// AdjustManual ручная корректировка баланса админом, сумма может быть любого
// знака. Корректировка в минус, уводящая баланс ниже нуля, запрещена и
// возвращает domain.ErrNegativeBalance.
func (s *WalletService) AdjustManual(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	description string,
	adminID int64,
) (*domain.Transaction, error) {
	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var opErr error
		transaction, opErr = applyBalanceOp(c, tx, balanceOpArgs{
			UserID:      userID,
			Delta:       amount,
			Type:        domain.TransactionAdminAdjustment,
			Description: fmt.Sprintf("Admin düzeltmesi: %s (admin #%d)", description, adminID),
		})
		return opErr
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrNotEnoughBalance) {
			return nil, domain.ErrNegativeBalance
		}
		return nil, fmt.Errorf("adjusting balance of user %d: %w", userID, txErr)
	}
	return transaction, nil
}

type UserBalance struct {
	Balance           decimal.Decimal
	MinimumBalance    decimal.Decimal
	CanCreateShipment bool
}

func (s *WalletService) Balance(ctx context.Context, userID int64) (*UserBalance, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &UserBalance{
		Balance:           user.Balance,
		MinimumBalance:    MinimumBalance,
		CanCreateShipment: user.Balance.GreaterThanOrEqual(MinimumBalance),
	}, nil
}

// Transactions возвращает журнал юзера, новые записи сверху.
func (s *WalletService) Transactions(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.Transaction, int64, error) {
	transactions, total, err := s.transRepo.GetByUserID(ctx, userID, page)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return transactions, total, nil
}
