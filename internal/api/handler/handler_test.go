package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/focoalerta/reports-api/internal/api/middleware"
	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
)

// newContext builds an echo context for a JSON request, optionally carrying
// the session the Session middleware would have stored.
func newContext(method, target, body string, session *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if session != nil {
		c.Set(middleware.SessionKey, session)
		c.Set(middleware.UserIDKey, session.UserID)
	}
	return c, rec
}

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleReport(id, owner int64, status domain.ReportStatus) *domain.Report {
	return &domain.Report{
		ID: id, UserID: owner,
		Title: "Água parada", Description: "Poça no terreno", Address: "Rua X, 100",
		Latitude: -23.55, Longitude: -46.63,
		Status: status, CreatedAt: fixedTime, UpdatedAt: fixedTime,
	}
}

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	authenticateFn func(ctx context.Context, username, password string) (*ports.AuthResult, error)
	endSessionFn   func(ctx context.Context, sessionID string) error
	currentUserFn  func(ctx context.Context, userID int64) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAuthService) EndSession(ctx context.Context, sessionID string) error {
	return s.endSessionFn(ctx, sessionID)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.currentUserFn(ctx, userID)
}

type stubReportService struct {
	submitFn  func(ctx context.Context, ownerID int64, draft ports.ReportDraft) (*ports.SubmitResult, error)
	listMine  []*domain.Report
	listAll   []*domain.Report
	getFn     func(ctx context.Context, id int64) (*domain.Report, error)
	updateFn  func(ctx context.Context, id, callerID int64, status string) (*domain.Report, error)
	history   []*domain.StatusChange
	resolveFn func(ctx context.Context, address string) (*domain.GeoPoint, error)
	err       error
}

func (s *stubReportService) Submit(ctx context.Context, ownerID int64, draft ports.ReportDraft) (*ports.SubmitResult, error) {
	return s.submitFn(ctx, ownerID, draft)
}

func (s *stubReportService) ListMine(_ context.Context, ownerID int64) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, r := range s.listMine {
		if r.UserID == ownerID {
			out = append(out, r)
		}
	}
	return out, s.err
}

func (s *stubReportService) ListAll(context.Context) ([]*domain.Report, error) {
	return s.listAll, s.err
}

func (s *stubReportService) Get(ctx context.Context, id int64) (*domain.Report, error) {
	return s.getFn(ctx, id)
}

func (s *stubReportService) UpdateStatus(ctx context.Context, id, callerID int64, status string) (*domain.Report, error) {
	return s.updateFn(ctx, id, callerID, status)
}

func (s *stubReportService) History(context.Context, int64) ([]*domain.StatusChange, error) {
	return s.history, s.err
}

func (s *stubReportService) ResolveAddress(ctx context.Context, address string) (*domain.GeoPoint, error) {
	return s.resolveFn(ctx, address)
}
