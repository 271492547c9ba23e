// Package retailers exposes the retailer directory endpoints.
package retailers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	retailerrepo "github.com/AudioList/deals-api/internal/repositories/retailer"
	"github.com/AudioList/deals-api/pkg/models"
)

// Handler handles retailer requests
type Handler struct {
	repo *retailerrepo.Repository
}

// NewHandler creates a new retailers handler
func NewHandler(repo *retailerrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers retailer routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/retailers", h.ListRetailers)
	g.GET("/retailers/:id", h.GetRetailer)
}

// ListRetailers returns the retailer directory. ?active=true restricts to
// retailers participating in deal views.
func (h *Handler) ListRetailers(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		retailers []models.Retailer
		err       error
	)
	if c.QueryParam("active") == "true" {
		retailers, err = h.repo.ListActive(ctx)
	} else {
		retailers, err = h.repo.List(ctx)
	}
	if err != nil {
		return err
	}
	if retailers == nil {
		retailers = []models.Retailer{}
	}

	return c.JSON(http.StatusOK, retailers)
}

// GetRetailer returns one retailer by id
func (h *Handler) GetRetailer(c echo.Context) error {
	retailer, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if retailer == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "retailer not found")
	}

	return c.JSON(http.StatusOK, retailer)
}
