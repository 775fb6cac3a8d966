package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (*repoargs.BalanceChange, error)
	IncrementShipments(ctx context.Context, userID int64) error
	List(ctx context.Context, args repoargs.ListUsers) ([]domain.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.Transaction, int64, error)
}

type DepositRepository interface {
	Create(ctx context.Context, args repoargs.DepositCreate) (*domain.DepositRequest, error)
	FindByID(ctx context.Context, id string) (*domain.DepositRequest, error)
	MarkProcessed(ctx context.Context, args repoargs.DepositMarkProcessed) (*domain.DepositRequest, error)
	GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.DepositRequest, int64, error)
	List(ctx context.Context, args repoargs.ListDeposits) ([]domain.DepositRequest, int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	FindByOrderCode(ctx context.Context, orderCode string) (*domain.Order, error)
	FindByTrackingCode(ctx context.Context, trackingCode string) (*domain.Order, error)
	FindForUser(ctx context.Context, userID int64, orderRef string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64, args repoargs.ListOrders) ([]domain.Order, int64, error)
	List(ctx context.Context, args repoargs.ListOrders) ([]domain.Order, int64, error)
	Stats(ctx context.Context) (*repoargs.OrderStats, error)
}

type CarrierRepository interface {
	Create(ctx context.Context, args repoargs.CarrierCreate) (*domain.Carrier, error)
	Update(ctx context.Context, args repoargs.CarrierUpdate) (*domain.Carrier, error)
	FindByID(ctx context.Context, id int64) (*domain.Carrier, error)
	GetActive(ctx context.Context) ([]domain.Carrier, error)
}

type SavedRecipientRepository interface {
	Save(ctx context.Context, args repoargs.SavedRecipientSave) (*domain.SavedRecipient, error)
	GetByUserID(ctx context.Context, userID int64, limit int64) ([]domain.SavedRecipient, error)
	Search(ctx context.Context, userID int64, query string) ([]domain.SavedRecipient, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, args repoargs.NotificationCreate) error
	GetByUserID(ctx context.Context, userID int64, limit int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

// CarrierCache кэш справочника карго-фирм. Ошибки кэша не должны влиять на
// ответ - реализация обязана быть best-effort.
type CarrierCache interface {
	Get(ctx context.Context) ([]domain.Carrier, error)
	Set(ctx context.Context, carriers []domain.Carrier) error
	Invalidate(ctx context.Context) error
}
