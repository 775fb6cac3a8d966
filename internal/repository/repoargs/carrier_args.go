package repoargs

import "github.com/shopspring/decimal"

type CarrierCreate struct {
	Name         string
	Logo         string
	Price        decimal.Decimal
	DeliveryTime string
}

// CarrierUpdate nil-поля не изменяются.
type CarrierUpdate struct {
	ID           int64
	Name         *string
	Logo         *string
	Price        *decimal.Decimal
	DeliveryTime *string
	IsActive     *bool
}
