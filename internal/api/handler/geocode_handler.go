package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/focoalerta/reports-api/internal/core/ports"
)

type GeocodeHandler struct {
	service ports.ReportService
}

func NewGeocodeHandler(service ports.ReportService) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

// Resolve handles GET /api/geocode?address=.
//
// @Summary      Resolve an address to coordinates
// @Description  A 404 means the address could not be located; pick the point on the map instead.
// @Tags         geocoding
// @Produce      json
// @Security     SessionCookie
// @Param        address  query     string  true  "Free-text address"
// @Success      200      {object}  geoPointResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /api/geocode [get]
func (h *GeocodeHandler) Resolve(c echo.Context) error {
	point, err := h.service.ResolveAddress(c.Request().Context(), c.QueryParam("address"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, geoPointResponse{
		Latitude:    point.Latitude,
		Longitude:   point.Longitude,
		DisplayName: point.DisplayName,
	})
}
