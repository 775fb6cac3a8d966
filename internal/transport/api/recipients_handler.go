package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kargopanel/backend/internal/domain"
)

type RecipientsHandler struct {
	recipientService RecipientServicer
}

func NewRecipientsHandler(recipientService RecipientServicer) *RecipientsHandler {
	return &RecipientsHandler{
		recipientService: recipientService,
	}
}

type SavedRecipientResponseItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	City       string    `json:"city"`
	District   string    `json:"district"`
	Address    string    `json:"address"`
	UsageCount int64     `json:"usageCount"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

func newSavedRecipientsResponse(recipients []domain.SavedRecipient) []SavedRecipientResponseItem {
	response := make([]SavedRecipientResponseItem, len(recipients))
	for i, r := range recipients {
		response[i] = SavedRecipientResponseItem{
			ID:         r.ID,
			Name:       r.Name,
			Phone:      r.Phone,
			City:       r.City,
			District:   r.District,
			Address:    r.Address,
			UsageCount: r.UsageCount,
			LastUsedAt: r.LastUsedAt,
		}
	}
	return response
}

// Index GET RouteGroup + RecipientsRoute. Адресная книга текущего юзера.
func (h *RecipientsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	recipients, err := h.recipientService.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipients": newSavedRecipientsResponse(recipients)})
}

// Search GET RouteGroup + RecipientSearchRoute. Поиск по имени и телефону,
// параметр ?q=, самые используемые адресаты первыми.
func (h *RecipientsHandler) Search(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	recipients, err := h.recipientService.Search(reqCtx, currentUserID, c.Query("q"))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipients": newSavedRecipientsResponse(recipients)})
}

func (h *RecipientsHandler) Save(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params RecipientParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	saved, err := h.recipientService.Save(reqCtx, currentUserID, domain.Recipient{
		Name:     params.Name,
		Phone:    params.Phone,
		City:     params.City,
		District: params.District,
		Address:  params.Address,
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipient": SavedRecipientResponseItem{
		ID:         saved.ID,
		Name:       saved.Name,
		Phone:      saved.Phone,
		City:       saved.City,
		District:   saved.District,
		Address:    saved.Address,
		UsageCount: saved.UsageCount,
		LastUsedAt: saved.LastUsedAt,
	}})
}

func (h *RecipientsHandler) Delete(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.recipientService.Delete(reqCtx, currentUserID, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatus(http.StatusOK)
}
