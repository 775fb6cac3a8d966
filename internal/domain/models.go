package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string
	Email          string
	Phone          string
	Company        string
	TaxID          string
	Password       string
	Role           RoleType
	Balance        decimal.Decimal
	TotalShipments int64
}

// Transaction неизменяемая запись журнала баланса. Единственная допустимая
// мутация журнала - добавление новой записи.
type Transaction struct {
	ID               string
	CreatedAt        time.Time
	UserID           int64
	Type             TransactionType
	Amount           decimal.Decimal
	BalanceBefore    decimal.Decimal
	BalanceAfter     decimal.Decimal
	Description      string
	OrderID          *int64
	DepositRequestID *string
}

type DepositRequest struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int64
	Amount      decimal.Decimal
	SenderName  string
	Description string
	PaymentDate time.Time
	Status      DepositStatusType
	AdminNote   *string
	ApprovedBy  *int64
}

type Recipient struct {
	Name     string
	Phone    string
	City     string
	District string
	Address  string
}

type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	City     string  `json:"city"`
	District string  `json:"district"`
}

type TimelineEvent struct {
	Date        time.Time       `json:"date"`
	Status      OrderStatusType `json:"status"`
	Description string          `json:"description"`
}

type Order struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	OrderCode       string
	TrackingCode    string
	UserID          int64
	Recipient       Recipient
	CarrierID       int64
	CarrierName     string
	Status          OrderStatusType
	StatusText      string
	Weight          decimal.Decimal
	Desi            int32
	Price           decimal.Decimal
	PaymentType     PaymentType
	CODAmount       *decimal.Decimal
	Description     string
	CurrentLocation *Location
	Timeline        []TimelineEvent
	DeliveredAt     *time.Time
}

// Carrier строка прайс-листа карго-фирмы. Справочные данные, меняются только админом.
type Carrier struct {
	ID           int64
	CreatedAt    time.Time
	Name         string
	Logo         string
	Price        decimal.Decimal
	DeliveryTime string
	IsActive     bool
}

type SavedRecipient struct {
	ID         string
	CreatedAt  time.Time
	UserID     int64
	Name       string
	Phone      string
	City       string
	District   string
	Address    string
	UsageCount int64
	LastUsedAt time.Time
}

type Notification struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	Type      NotificationType
	Title     string
	Message   string
	Read      bool
}
