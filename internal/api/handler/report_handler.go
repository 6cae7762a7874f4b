package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/focoalerta/reports-api/internal/api/middleware"
	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
)

// ReportHandler handles HTTP requests for report operations.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ListAll handles GET /api/reports.
//
// @Summary      List every report
// @Tags         reports
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   reportResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/reports [get]
func (h *ReportHandler) ListAll(c echo.Context) error {
	reports, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponses(reports))
}

// ListMine handles GET /api/user/reports.
//
// @Summary      List the caller's reports
// @Tags         reports
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   reportResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/user/reports [get]
func (h *ReportHandler) ListMine(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}

	reports, err := h.service.ListMine(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponses(reports))
}

// Get handles GET /api/reports/:id.
//
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "Report ID"
// @Success      200  {object}  reportResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	report, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// Create handles POST /api/reports.
//
// @Summary      Submit a report
// @Description  Coordinates may be sent as numbers or numeric strings. Replaying an
// @Description  Idempotency-Key returns the original report with status 200.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createReportRequest  true   "Report"
// @Success      201              {object}  reportResponse
// @Success      200              {object}  reportResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Router       /api/reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}

	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	unparsed := unparsedCoordinates(req)

	result, err := h.service.Submit(c.Request().Context(), session.UserID, ports.ReportDraft{
		Title:          req.Title,
		Description:    req.Description,
		Address:        req.Address,
		Latitude:       req.Latitude.value,
		Longitude:      req.Longitude.value,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return withCoordinateErrors(err, unparsed)
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, toReportResponse(result.Report))
}

// UpdateStatus handles PATCH /api/reports/:id/status.
//
// @Summary      Change a report's status
// @Description  Only the report's owner may change its status.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      int                  true  "Report ID"
// @Param        body  body      updateStatusRequest  true  "New status: pendente, em_andamento, resolvido or cancelado"
// @Success      200   {object}  reportResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/reports/{id}/status [patch]
func (h *ReportHandler) UpdateStatus(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	report, err := h.service.UpdateStatus(c.Request().Context(), id, session.UserID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// History handles GET /api/reports/:id/history.
//
// @Summary      Status history of a report
// @Tags         reports
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "Report ID"
// @Success      200  {array}   statusChangeResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/reports/{id}/history [get]
func (h *ReportHandler) History(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	changes, err := h.service.History(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatusChangeResponses(changes))
}

func reportID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}
	return id, nil
}

// unparsedCoordinates maps coordinate fields whose value was not a number to
// the message reported for them. Such fields reach Submit unset.
func unparsedCoordinates(req createReportRequest) map[string]string {
	out := make(map[string]string, 2)
	if req.Latitude.invalid {
		out["latitude"] = "latitude must be a number"
	}
	if req.Longitude.invalid {
		out["longitude"] = "longitude must be a number"
	}
	return out
}

// withCoordinateErrors folds unparsed coordinates into the validation failures
// returned by Submit, so a single response lists every rejected field.
func withCoordinateErrors(err error, unparsed map[string]string) error {
	var ve *domain.ValidationError
	if len(unparsed) == 0 || !errors.As(err, &ve) {
		return err
	}

	fields := make([]domain.FieldError, 0, len(ve.Fields)+len(unparsed))
	seen := make(map[string]bool, len(unparsed))
	for _, f := range ve.Fields {
		if msg, ok := unparsed[f.Field]; ok {
			f.Message = msg
			seen[f.Field] = true
		}
		fields = append(fields, f)
	}
	for _, name := range []string{"latitude", "longitude"} {
		if msg, ok := unparsed[name]; ok && !seen[name] {
			fields = append(fields, domain.FieldError{Field: name, Message: msg})
		}
	}
	return domain.NewValidationError(fields...)
}
