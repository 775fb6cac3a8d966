package repoargs

import (
	"time"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type DepositCreate struct {
	ID          string
	UserID      int64
	Amount      decimal.Decimal
	SenderName  string
	Description string
	PaymentDate time.Time
}

// DepositMarkProcessed перевод заявки в терминальный статус. Обновление
// применяется только если заявка всё еще pending.
type DepositMarkProcessed struct {
	ID        string
	Status    domain.DepositStatusType
	AdminNote *string
	AdminID   int64
}

type ListDeposits struct {
	// Status пустая строка означает выборку без фильтра.
	Status domain.DepositStatusType
	Page   Page
}
