package repoargs

import (
	"github.com/kargopanel/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionCreate struct {
	ID               string
	UserID           int64
	Type             domain.TransactionType
	Amount           decimal.Decimal
	BalanceBefore    decimal.Decimal
	BalanceAfter     decimal.Decimal
	Description      string
	OrderID          *int64
	DepositRequestID *string
}
