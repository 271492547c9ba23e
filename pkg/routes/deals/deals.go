// Package deals exposes the deal view endpoints.
package deals

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	dealsvc "github.com/AudioList/deals-api/pkg/deals"
	"github.com/AudioList/deals-api/pkg/models"
)

// HistoryReader serves the raw series endpoint.
type HistoryReader interface {
	HistoryForProduct(ctx context.Context, productID string) ([]models.PricePoint, error)
}

// Handler handles deal view requests
type Handler struct {
	service *dealsvc.Service
	history HistoryReader
}

// NewHandler creates a new deals handler
func NewHandler(service *dealsvc.Service, history HistoryReader) *Handler {
	return &Handler{service: service, history: history}
}

// Register registers deal routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/products/:productId/deals", h.GetDeals)
	g.GET("/products/:productId/history", h.GetHistory)
}

// GetDeals returns the assembled deal view for a product
func (h *Handler) GetDeals(c echo.Context) error {
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetDealView(c.Request().Context(), productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

// GetHistory returns the raw price history series for a product.
// ?retailer_id= restricts the series to one retailer.
func (h *Handler) GetHistory(c echo.Context) error {
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	points, err := h.history.HistoryForProduct(c.Request().Context(), productID)
	if err != nil {
		return err
	}

	if retailerID := c.QueryParam("retailer_id"); retailerID != "" {
		if _, err := uuid.Parse(retailerID); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid retailer id")
		}
		filtered := make([]models.PricePoint, 0, len(points))
		for _, p := range points {
			if p.RetailerID == retailerID {
				filtered = append(filtered, p)
			}
		}
		points = filtered
	}
	if points == nil {
		points = []models.PricePoint{}
	}

	return c.JSON(http.StatusOK, points)
}

func productIDParam(c echo.Context) (string, error) {
	productID := c.Param("productId")
	if _, err := uuid.Parse(productID); err != nil {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return productID, nil
}
