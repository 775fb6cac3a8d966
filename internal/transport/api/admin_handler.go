package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service"
)

// AdminHandler все операции панели управления. Роуты защищены парой
// middlewares.AuthRequired + middlewares.AdminRequired.
type AdminHandler struct {
	userService    UserServicer
	walletService  WalletServicer
	depositService DepositServicer
	orderService   OrderServicer
	carrierService CarrierServicer
}

type AdminHandlerArgs struct {
	UserService    UserServicer
	WalletService  WalletServicer
	DepositService DepositServicer
	OrderService   OrderServicer
	CarrierService CarrierServicer
}

func NewAdminHandler(args AdminHandlerArgs) *AdminHandler {
	return &AdminHandler{
		userService:    args.UserService,
		walletService:  args.WalletService,
		depositService: args.DepositService,
		orderService:   args.OrderService,
		carrierService: args.CarrierService,
	}
}

type StatsResponse struct {
	TotalShipments     int64   `json:"totalShipments"`
	ActiveShipments    int64   `json:"activeShipments"`
	DeliveredShipments int64   `json:"deliveredShipments"`
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalUsers         int64   `json:"totalUsers"`
}

func (h *AdminHandler) Stats(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	stats, err := h.orderService.Stats(reqCtx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &StatsResponse{
		TotalShipments:     stats.TotalShipments,
		ActiveShipments:    stats.ActiveShipments,
		DeliveredShipments: stats.DeliveredShipments,
		TotalRevenue:       stats.TotalRevenue.InexactFloat64(),
		TotalUsers:         stats.TotalUsers,
	})
}

func (h *AdminHandler) Users(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	users, total, err := h.userService.List(reqCtx, repoargs.ListUsers{
		Search: c.Query("search"),
		Page:   getPageFromQuery(c),
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = newUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": response, "total": total})
}

type AdjustBalanceParams struct {
	UserID      int64           `binding:"required"               json:"userId"`
	Amount      decimal.Decimal `binding:"required"               json:"amount"`
	Description string          `binding:"required,max_bytes=500" json:"description"`
}

// AdjustBalance POST RouteGroup + AdminAdjustBalanceRoute. Ручная корректировка
// баланса, сумма может быть отрицательной, но не ниже нуля на счете.
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	adminID := getUserIDFromContext(c)

	var params AdjustBalanceParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.walletService.AdjustManual(reqCtx, params.UserID, params.Amount, params.Description, adminID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, domain.ErrNegativeBalance):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "balance can not become negative"})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse([]domain.Transaction{*transaction})[0]})
}

// UserTransactions GET RouteGroup + AdminUserTransactionsRoute. Журнал
// транзакций произвольного юзера.
func (h *AdminHandler) UserTransactions(c *gin.Context) {
	userID, parseErr := strconv.ParseInt(c.Param("userID"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, total, err := h.walletService.Transactions(reqCtx, userID, getPageFromQuery(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": newTransactionResponse(transactions),
		"total":        total,
	})
}

func (h *AdminHandler) DepositRequests(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	// по умолчанию показываем очередь на обработку, ?status=all снимает фильтр
	status := c.DefaultQuery("status", string(domain.DepositStatusPending))
	if status == "all" {
		status = ""
	}

	deposits, total, err := h.depositService.List(reqCtx, repoargs.ListDeposits{
		Status: domain.DepositStatusType(status),
		Page:   getPageFromQuery(c),
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"depositRequests": newDepositResponse(deposits),
		"total":           total,
	})
}

type ProcessDepositParams struct {
	AdminNote *string `binding:"omitempty,max_bytes=500" json:"adminNote"`
}

// ApproveDeposit POST RouteGroup + AdminApproveDepositRoute. Отвечает балансом
// юзера после зачисления; повторная обработка уже закрытой заявки дает 409.
func (h *AdminHandler) ApproveDeposit(c *gin.Context) {
	adminID := getUserIDFromContext(c)

	adminNote, ok := bindAdminNote(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	approval, err := h.depositService.Approve(reqCtx, c.Param("id"), adminID, adminNote)
	if err != nil {
		abortProcessDepositError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"newBalance":     approval.NewBalance.InexactFloat64(),
		"depositRequest": newDepositResponseItem(approval.Deposit),
	})
}

func (h *AdminHandler) RejectDeposit(c *gin.Context) {
	adminID := getUserIDFromContext(c)

	adminNote, ok := bindAdminNote(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	deposit, err := h.depositService.Reject(reqCtx, c.Param("id"), adminID, adminNote)
	if err != nil {
		abortProcessDepositError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"depositRequest": newDepositResponseItem(deposit),
	})
}

// bindAdminNote пустое тело запроса валидно - заявку можно обработать без
// комментария.
func bindAdminNote(c *gin.Context) (*string, bool) {
	var params ProcessDepositParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return nil, false
		}
	}
	return params.AdminNote, true
}

func abortProcessDepositError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "deposit request not found"})
	case errors.Is(err, domain.ErrDepositProcessed):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "deposit request already processed"})
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}

func (h *AdminHandler) Orders(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, total, err := h.orderService.List(reqCtx, repoargs.ListOrders{
		Status: domain.OrderStatusType(c.Query("status")),
		Search: c.Query("search"),
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

type OrderStatusParams struct {
	Status      string            `binding:"required,oneof=created picked in_transit out_for_delivery delivered" json:"status"`
	Location    *LocationResponse `json:"location"`
	Description string            `binding:"max_bytes=500" json:"description"`
}

// UpdateOrderStatus PUT RouteGroup + AdminOrderStatusRoute. Меняет статус
// отправления и дописывает событие в таймлайн.
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var params OrderStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	args := service.UpdateStatusArgs{
		OrderCode:   c.Param("orderCode"),
		Status:      domain.OrderStatusType(params.Status),
		Description: params.Description,
	}
	if params.Location != nil {
		args.Location = &domain.Location{
			Lat:      params.Location.Lat,
			Lng:      params.Location.Lng,
			City:     params.Location.City,
			District: params.Location.District,
		}
	}

	order, err := h.orderService.UpdateStatus(reqCtx, args)
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

type CarrierCreateParams struct {
	Name         string          `binding:"required,max_bytes=255" json:"name"`
	Logo         string          `binding:"max_bytes=500"          json:"logo"`
	Price        decimal.Decimal `binding:"required"               json:"price"`
	DeliveryTime string          `binding:"max=100"                json:"deliveryTime"`
}

func (h *AdminHandler) CreateCarrier(c *gin.Context) {
	var params CarrierCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	carrier, err := h.carrierService.Create(reqCtx, repoargs.CarrierCreate{
		Name:         params.Name,
		Logo:         params.Logo,
		Price:        params.Price,
		DeliveryTime: params.DeliveryTime,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "carrier already exists"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"carrier": newCarrierResponseItem(carrier)})
}

type CarrierUpdateParams struct {
	Name         *string          `binding:"omitempty,max_bytes=255" json:"name"`
	Logo         *string          `binding:"omitempty,max_bytes=500" json:"logo"`
	Price        *decimal.Decimal `json:"price"`
	DeliveryTime *string          `binding:"omitempty,max=100"       json:"deliveryTime"`
	IsActive     *bool            `json:"isActive"`
}

func (h *AdminHandler) UpdateCarrier(c *gin.Context) {
	id, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid carrier id"})
		return
	}

	var params CarrierUpdateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	carrier, err := h.carrierService.Update(reqCtx, repoargs.CarrierUpdate{
		ID:           id,
		Name:         params.Name,
		Logo:         params.Logo,
		Price:        params.Price,
		DeliveryTime: params.DeliveryTime,
		IsActive:     params.IsActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "carrier not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"carrier": newCarrierResponseItem(carrier)})
}
