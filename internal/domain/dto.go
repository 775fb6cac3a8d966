package domain

type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

type TransactionType string

const (
	TransactionDeposit         TransactionType = "deposit"
	TransactionPayment         TransactionType = "payment"
	TransactionRefund          TransactionType = "refund"
	TransactionAdminAdjustment TransactionType = "admin_adjustment"
)

type DepositStatusType string

const (
	DepositStatusPending  DepositStatusType = "pending"
	DepositStatusApproved DepositStatusType = "approved"
	DepositStatusRejected DepositStatusType = "rejected"
)

type OrderStatusType string

const (
	OrderStatusCreated        OrderStatusType = "created"
	OrderStatusPicked         OrderStatusType = "picked"
	OrderStatusInTransit      OrderStatusType = "in_transit"
	OrderStatusOutForDelivery OrderStatusType = "out_for_delivery"
	OrderStatusDelivered      OrderStatusType = "delivered"
)

// Text возвращает турецкий текст статуса для клиента. Неизвестный статус
// отображается как "Bilinmiyor".
func (s OrderStatusType) Text() string {
	switch s {
	case OrderStatusCreated:
		return "Sipariş Oluşturuldu"
	case OrderStatusPicked:
		return "Kargo Alındı"
	case OrderStatusInTransit:
		return "Transfer Merkezinde"
	case OrderStatusOutForDelivery:
		return "Dağıtıma Çıktı"
	case OrderStatusDelivered:
		return "Teslim Edildi"
	default:
		return "Bilinmiyor"
	}
}

type PaymentType string

const (
	PaymentPrepaid PaymentType = "prepaid"
	PaymentCOD     PaymentType = "cod"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)
