package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service"
)

type OrdersHandler struct {
	orderService OrderServicer
}

func NewOrdersHandler(orderService OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderService: orderService,
	}
}

type RecipientParams struct {
	Name     string `binding:"required,min=2,max_bytes=255" json:"name"`
	Phone    string `binding:"required,min=7,max=20"        json:"phone"`
	City     string `binding:"required,max=100"             json:"city"`
	District string `binding:"max=100"                      json:"district"`
	Address  string `binding:"required,max_bytes=1000"      json:"address"`
}

type OrderCreateParams struct {
	Recipient   RecipientParams  `binding:"required"                    json:"recipient"`
	CarrierID   int64            `binding:"required"                    json:"carrierId"`
	Weight      decimal.Decimal  `binding:"required"                    json:"weight"`
	Desi        int32            `binding:"min=0"                       json:"desi"`
	PaymentType string           `binding:"required,oneof=prepaid cod"  json:"paymentType"`
	CODAmount   *decimal.Decimal `json:"codAmount"`
	Description string           `binding:"max_bytes=1000"              json:"description"`
}

type LocationResponse struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	City     string  `json:"city"`
	District string  `json:"district"`
}

type TimelineEventResponse struct {
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
}

type OrderResponse struct {
	ID              int64                   `json:"id"`
	OrderCode       string                  `json:"orderCode"`
	TrackingCode    string                  `json:"trackingCode"`
	Recipient       RecipientParams         `json:"recipient"`
	CarrierID       int64                   `json:"carrierId"`
	CarrierName     string                  `json:"carrierName"`
	Status          string                  `json:"status"`
	StatusText      string                  `json:"statusText"`
	Weight          float64                 `json:"weight"`
	Desi            int32                   `json:"desi"`
	Price           float64                 `json:"price"`
	PaymentType     string                  `json:"paymentType"`
	CODAmount       *float64                `json:"codAmount,omitempty"`
	Description     string                  `json:"description"`
	CurrentLocation *LocationResponse       `json:"currentLocation,omitempty"`
	Timeline        []TimelineEventResponse `json:"timeline"`
	DeliveredAt     *time.Time              `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	response := OrderResponse{
		ID:        order.ID,
		OrderCode: order.OrderCode,
		Recipient: RecipientParams{
			Name:     order.Recipient.Name,
			Phone:    order.Recipient.Phone,
			City:     order.Recipient.City,
			District: order.Recipient.District,
			Address:  order.Recipient.Address,
		},
		TrackingCode: order.TrackingCode,
		CarrierID:    order.CarrierID,
		CarrierName:  order.CarrierName,
		Status:       string(order.Status),
		StatusText:   order.StatusText,
		Weight:       order.Weight.InexactFloat64(),
		Desi:         order.Desi,
		Price:        order.Price.InexactFloat64(),
		PaymentType:  string(order.PaymentType),
		Description:  order.Description,
		DeliveredAt:  order.DeliveredAt,
		CreatedAt:    order.CreatedAt,
	}
	if order.CODAmount != nil {
		amount := order.CODAmount.InexactFloat64()
		response.CODAmount = &amount
	}
	if order.CurrentLocation != nil {
		response.CurrentLocation = &LocationResponse{
			Lat:      order.CurrentLocation.Lat,
			Lng:      order.CurrentLocation.Lng,
			City:     order.CurrentLocation.City,
			District: order.CurrentLocation.District,
		}
	}
	response.Timeline = make([]TimelineEventResponse, len(order.Timeline))
	for i, event := range order.Timeline {
		response.Timeline[i] = TimelineEventResponse{
			Date:        event.Date,
			Status:      string(event.Status),
			Description: event.Description,
		}
	}
	return response
}

func newOrdersResponse(orders []domain.Order) []OrderResponse {
	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = newOrderResponse(&orders[i])
	}
	return response
}

// Create POST RouteGroup + OrdersRoute. Создает отправление; prepaid-заказ
// списывает стоимость с баланса атомарно с созданием.
func (h *OrdersHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.orderService.Create(reqCtx, service.CreateOrderArgs{
		UserID: currentUserID,
		Recipient: domain.Recipient{
			Name:     params.Recipient.Name,
			Phone:    params.Recipient.Phone,
			City:     params.Recipient.City,
			District: params.Recipient.District,
			Address:  params.Recipient.Address,
		},
		CarrierID:   params.CarrierID,
		Weight:      params.Weight,
		Desi:        params.Desi,
		PaymentType: domain.PaymentType(params.PaymentType),
		CODAmount:   params.CODAmount,
		Description: params.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotEnoughBalance):
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "carrier not found"})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": newOrderResponse(order)})
}

// Index GET RouteGroup + OrdersRoute. Отправления текущего юзера.
func (h *OrdersHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, total, err := h.orderService.GetByUserID(reqCtx, currentUserID, repoargs.ListOrders{
		Status: domain.OrderStatusType(c.Query("status")),
		Page:   getPageFromQuery(c),
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": newOrdersResponse(orders),
		"total":  total,
	})
}

// Show GET RouteGroup + OrderRoute. Заказ по коду или id; чужой заказ дает 404.
func (h *OrdersHandler) Show(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.orderService.GetForUser(reqCtx, currentUserID, c.Param("ref"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

// Track GET RouteGroup + TrackRoute. Публичный трекинг без авторизации,
// по трек-коду отдается урезанный ответ без данных отправителя.
func (h *OrdersHandler) Track(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.orderService.TrackByCode(reqCtx, c.Param("trackingCode"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "shipment not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := newOrderResponse(order)
	c.JSON(http.StatusOK, gin.H{"tracking": gin.H{
		"trackingCode":    response.TrackingCode,
		"carrierName":     response.CarrierName,
		"status":          response.Status,
		"statusText":      response.StatusText,
		"currentLocation": response.CurrentLocation,
		"timeline":        response.Timeline,
		"deliveredAt":     response.DeliveredAt,
	}})
}
