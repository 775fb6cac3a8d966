package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/pkg/uow"
)

type balanceOpArgs struct {
	UserID           int64
	Delta            decimal.Decimal
	Type             domain.TransactionType
	Description      string
	OrderID          *int64
	DepositRequestID *string
}

// applyBalanceOp атомарно меняет баланс юзера и дописывает запись в журнал
// транзакций. Вызывается строго внутри uow-транзакции: изменение баланса и
// запись журнала либо коммитятся вместе, либо откатываются вместе.
func applyBalanceOp(ctx context.Context, tx uow.TX, args balanceOpArgs) (*domain.Transaction, error) {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}

	change, changeErr := userRepo.AdjustBalance(ctx, args.UserID, args.Delta)
	if changeErr != nil {
		return nil, changeErr //nolint:wrapcheck
	}

	transRepo, transRepoErr :=
		uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr //nolint:wrapcheck
	}

	transaction, createErr := transRepo.Create(ctx, repoargs.TransactionCreate{
		ID:               uuid.NewString(),
		UserID:           args.UserID,
		Type:             args.Type,
		Amount:           args.Delta,
		BalanceBefore:    change.Before,
		BalanceAfter:     change.After,
		Description:      args.Description,
		OrderID:          args.OrderID,
		DepositRequestID: args.DepositRequestID,
	})
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}
	return transaction, nil
}
