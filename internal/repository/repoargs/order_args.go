package repoargs

import (
	"github.com/kargopanel/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderCreate struct {
	OrderCode       string
	TrackingCode    string
	UserID          int64
	Recipient       domain.Recipient
	CarrierID       int64
	CarrierName     string
	Weight          decimal.Decimal
	Desi            int32
	Price           decimal.Decimal
	PaymentType     domain.PaymentType
	CODAmount       *decimal.Decimal
	Description     string
	CurrentLocation domain.Location
	InitialEvent    domain.TimelineEvent
}

type OrderStatusUpdate struct {
	OrderCode  string
	Status     domain.OrderStatusType
	StatusText string
	Location   *domain.Location
	Event      domain.TimelineEvent
}

type ListOrders struct {
	// Status пустое значение - без фильтра по статусу.
	Status domain.OrderStatusType
	// Search ищет по коду заказа, трек-коду и имени получателя (только админская выборка).
	Search string
	Page   Page
}

type OrderStats struct {
	TotalShipments     int64
	ActiveShipments    int64
	DeliveredShipments int64
	TotalRevenue       decimal.Decimal
}
