package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kargopanel/backend/internal/domain"
	"github.com/kargopanel/backend/internal/service"
)

type WalletHandler struct {
	walletService  WalletServicer
	depositService DepositServicer
}

func NewWalletHandler(walletService WalletServicer, depositService DepositServicer) *WalletHandler {
	return &WalletHandler{
		walletService:  walletService,
		depositService: depositService,
	}
}

type BalanceResponse struct {
	Balance           float64 `json:"balance"`
	MinimumBalance    float64 `json:"minimumBalance"`
	CanCreateShipment bool    `json:"canCreateShipment"`
}

func (h *WalletHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.walletService.Balance(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		Balance:           balance.Balance.InexactFloat64(),
		MinimumBalance:    balance.MinimumBalance.InexactFloat64(),
		CanCreateShipment: balance.CanCreateShipment,
	})
}

type TransactionResponseItem struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Amount           float64   `json:"amount"`
	BalanceBefore    float64   `json:"balanceBefore"`
	BalanceAfter     float64   `json:"balanceAfter"`
	Description      string    `json:"description"`
	OrderID          *int64    `json:"orderId,omitempty"`
	DepositRequestID *string   `json:"depositRequestId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newTransactionResponse(transactions []domain.Transaction) []TransactionResponseItem {
	response := make([]TransactionResponseItem, len(transactions))
	for i, t := range transactions {
		response[i] = TransactionResponseItem{
			ID:               t.ID,
			Type:             string(t.Type),
			Amount:           t.Amount.InexactFloat64(),
			BalanceBefore:    t.BalanceBefore.InexactFloat64(),
			BalanceAfter:     t.BalanceAfter.InexactFloat64(),
			Description:      t.Description,
			OrderID:          t.OrderID,
			DepositRequestID: t.DepositRequestID,
			CreatedAt:        t.CreatedAt,
		}
	}
	return response
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, total, err := h.walletService.Transactions(reqCtx, currentUserID, getPageFromQuery(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": newTransactionResponse(transactions),
		"total":        total,
	})
}

type DepositRequestParams struct {
	Amount      decimal.Decimal `binding:"required"          json:"amount"`
	SenderName  string          `binding:"required,max=255"  json:"senderName"`
	Description string          `binding:"max_bytes=1000"    json:"description"`
	PaymentDate *time.Time      `json:"paymentDate"`
}

type DepositResponseItem struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	SenderName  string    `json:"senderName"`
	Description string    `json:"description"`
	PaymentDate time.Time `json:"paymentDate"`
	Status      string    `json:"status"`
	AdminNote   *string   `json:"adminNote,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newDepositResponseItem(d *domain.DepositRequest) DepositResponseItem {
	return DepositResponseItem{
		ID:          d.ID,
		Amount:      d.Amount.InexactFloat64(),
		SenderName:  d.SenderName,
		Description: d.Description,
		PaymentDate: d.PaymentDate,
		Status:      string(d.Status),
		AdminNote:   d.AdminNote,
		CreatedAt:   d.CreatedAt,
	}
}

func newDepositResponse(deposits []domain.DepositRequest) []DepositResponseItem {
	response := make([]DepositResponseItem, len(deposits))
	for i := range deposits {
		response[i] = newDepositResponseItem(&deposits[i])
	}
	return response
}

// CreateDepositRequest POST RouteGroup + DepositRequestRoute. Заявка на пополнение
// банковским переводом; баланс изменится только после одобрения админом.
func (h *WalletHandler) CreateDepositRequest(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params DepositRequestParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	deposit, err := h.depositService.CreateRequest(reqCtx, service.CreateDepositArgs{
		UserID:      currentUserID,
		Amount:      params.Amount,
		SenderName:  params.SenderName,
		Description: params.Description,
		PaymentDate: params.PaymentDate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"depositRequest": newDepositResponseItem(deposit)})
}

func (h *WalletHandler) DepositRequests(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	deposits, total, err := h.depositService.GetByUserID(reqCtx, currentUserID, getPageFromQuery(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"depositRequests": newDepositResponse(deposits),
		"total":           total,
	})
}
