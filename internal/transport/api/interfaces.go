package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, args repoargs.ListUsers) ([]domain.User, int64, error)
}

type WalletServicer interface {
	Balance(ctx context.Context, userID int64) (*service.UserBalance, error)
	Transactions(ctx context.Context, userID int64, page repoargs.Page) ([]domain.Transaction, int64, error)
	AdjustManual(
		ctx context.Context,
		userID int64,
		amount decimal.Decimal,
		description string,
		adminID int64,
	) (*domain.Transaction, error)
}

type DepositServicer interface {
	CreateRequest(ctx context.Context, args service.CreateDepositArgs) (*domain.DepositRequest, error)
	Approve(ctx context.Context, depositID string, adminID int64, adminNote *string) (*service.DepositApproval, error)
	Reject(ctx context.Context, depositID string, adminID int64, adminNote *string) (*domain.DepositRequest, error)
	GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.DepositRequest, int64, error)
	List(ctx context.Context, args repoargs.ListDeposits) ([]domain.DepositRequest, int64, error)
}

type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args service.UpdateStatusArgs) (*domain.Order, error)
	TrackByCode(ctx context.Context, trackingCode string) (*domain.Order, error)
	GetForUser(ctx context.Context, userID int64, orderRef string) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64, args repoargs.ListOrders) ([]domain.Order, int64, error)
	List(ctx context.Context, args repoargs.ListOrders) ([]domain.Order, int64, error)
	Stats(ctx context.Context) (*service.PlatformStats, error)
}

type CarrierServicer interface {
	GetActive(ctx context.Context) ([]domain.Carrier, error)
	Create(ctx context.Context, args repoargs.CarrierCreate) (*domain.Carrier, error)
	Update(ctx context.Context, args repoargs.CarrierUpdate) (*domain.Carrier, error)
}

type NotificationServicer interface {
	GetByUserID(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

type RecipientServicer interface {
	Save(ctx context.Context, userID int64, recipient domain.Recipient) (*domain.SavedRecipient, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.SavedRecipient, error)
	Search(ctx context.Context, userID int64, query string) ([]domain.SavedRecipient, error)
	Delete(ctx context.Context, userID int64, id string) error
}
