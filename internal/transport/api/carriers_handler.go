package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kargopanel/backend/internal/domain"
)

type CarriersHandler struct {
	carrierService CarrierServicer
}

func NewCarriersHandler(carrierService CarrierServicer) *CarriersHandler {
	return &CarriersHandler{
		carrierService: carrierService,
	}
}

type CarrierResponseItem struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Logo         string    `json:"logo"`
	Price        float64   `json:"price"`
	DeliveryTime string    `json:"deliveryTime"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newCarrierResponseItem(carrier *domain.Carrier) CarrierResponseItem {
	return CarrierResponseItem{
		ID:           carrier.ID,
		Name:         carrier.Name,
		Logo:         carrier.Logo,
		Price:        carrier.Price.InexactFloat64(),
		DeliveryTime: carrier.DeliveryTime,
		IsActive:     carrier.IsActive,
		CreatedAt:    carrier.CreatedAt,
	}
}

// Index GET RouteGroup + CarriersRoute. Активные карго-фирмы с ценами.
func (h *CarriersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	carriers, err := h.carrierService.GetActive(reqCtx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]CarrierResponseItem, len(carriers))
	for i := range carriers {
		response[i] = newCarrierResponseItem(&carriers[i])
	}
	c.JSON(http.StatusOK, gin.H{"carriers": response})
}
