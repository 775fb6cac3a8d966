package repoargs

import (
	"github.com/kargopanel/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateUser struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	TaxID    string
	Password string
	Role     domain.RoleType
}

// BalanceChange результат атомарного изменения баланса на стороне хранилища.
type BalanceChange struct {
	Before decimal.Decimal
	After  decimal.Decimal
}

type ListUsers struct {
	Search string
	Page   Page
}
