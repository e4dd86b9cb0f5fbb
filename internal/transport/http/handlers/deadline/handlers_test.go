package deadlinehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"defensoria/internal/domain/auth"
	"defensoria/internal/domain/deadline"
	"defensoria/internal/platform/metrics"
	"defensoria/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret"

type allowAllPerms struct{}

func (allowAllPerms) HasPermission(context.Context, string, string) (bool, error) {
	return true, nil
}

type fakeCatalog struct {
	types map[string]deadline.DeadlineType
}

func (f *fakeCatalog) ResolveType(_ context.Context, _, code string) (deadline.DeadlineType, error) {
	if t, ok := f.types[code]; ok {
		return t, nil
	}
	return deadline.DeadlineType{}, deadline.ErrTypeNotFound
}

func (f *fakeCatalog) GetTypeByID(_ context.Context, _, id string) (deadline.DeadlineType, error) {
	for _, t := range f.types {
		if t.ID == id {
			return t, nil
		}
	}
	return deadline.DeadlineType{}, deadline.ErrTypeNotFound
}

func (f *fakeCatalog) ListTypes(context.Context, string, deadline.TypeFilter) ([]deadline.DeadlineType, error) {
	var out []deadline.DeadlineType
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeCatalog) CreateType(_ context.Context, _ string, payload deadline.DeadlineType) (string, error) {
	if _, ok := f.types[payload.Code]; ok {
		return "", deadline.ErrDuplicateCode
	}
	f.types[payload.Code] = payload
	return payload.Code, nil
}

func (f *fakeCatalog) UpdateType(context.Context, string, string, deadline.DeadlineType) error {
	return nil
}

func (f *fakeCatalog) DeactivateType(context.Context, string, string) error { return nil }

type fakeCalendar struct{}

func (fakeCalendar) FindHolidays(context.Context, string, time.Time, time.Time) ([]deadline.HolidayEntry, error) {
	return nil, nil
}

func (fakeCalendar) ListHolidays(context.Context, string, deadline.HolidayFilter) ([]deadline.HolidayEntry, error) {
	return nil, nil
}

func (fakeCalendar) CreateHoliday(context.Context, string, deadline.HolidayEntry) (string, error) {
	return "h1", nil
}

func (fakeCalendar) UpdateHoliday(context.Context, string, string, deadline.HolidayEntry) error {
	return nil
}

func (fakeCalendar) DeleteHoliday(context.Context, string, string) error { return nil }

type fakeHistory struct{}

func (fakeHistory) AppendCalculation(_ context.Context, rec deadline.CalculationRecord) (deadline.CalculationRecord, error) {
	rec.ID = "rec-1"
	return rec, nil
}

func (fakeHistory) ListCalculations(context.Context, string, string) ([]deadline.CalculationRecord, error) {
	return nil, nil
}

func (fakeHistory) GetCalculation(context.Context, string, string) (deadline.CalculationRecord, error) {
	return deadline.CalculationRecord{}, deadline.ErrRecordNotFound
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	catalog := &fakeCatalog{types: map[string]deadline.DeadlineType{
		"APELACAO": {
			ID:                  "dt-1",
			Code:                "APELACAO",
			Name:                "Appeal",
			BaseLegalDays:       15,
			AreaOfLaw:           deadline.AreaCriminal,
			DoublingEligible:    true,
			PresumedReadingDays: 10,
			Active:              true,
		},
	}}
	svc := &deadline.Service{
		Types:    catalog,
		Holidays: fakeCalendar{},
		History:  fakeHistory{},
		DayCap:   deadline.DefaultDayCap,
	}
	handler := &Handler{Service: svc, Perms: allowAllPerms{}, Metrics: metrics.New()}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	router.Route("/api/v1", handler.RegisterRoutes)
	return router
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:   "u1",
		TenantID: "t1",
		RoleID:   "r1",
		RoleName: auth.RoleDefender,
	}, time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return "Bearer " + token
}

func TestCalculateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"expeditionDate":"2024-01-10","typeCode":"APELACAO"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deadlines/calculate", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool                       `json:"success"`
		Data    deadline.CalculationResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatal("expected success envelope")
	}
	want := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	if !envelope.Data.DueDate.Equal(want) {
		t.Fatalf("expected due 2024-02-20, got %s", envelope.Data.DueDate)
	}
	if !envelope.Data.DoublingApplied || envelope.Data.EffectiveDays != 30 {
		t.Fatalf("expected doubled 30 days, got %+v", envelope.Data)
	}
}

func TestCalculateEndpointValidation(t *testing.T) {
	router := newTestRouter(t)

	body := `{"expeditionDate":"2024-01-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deadlines/calculate", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "validation_error") {
		t.Fatalf("expected validation_error, got %s", rec.Body.String())
	}
}

func TestCalculateEndpointUnknownType(t *testing.T) {
	router := newTestRouter(t)

	body := `{"expeditionDate":"2024-01-10","typeCode":"NOPE"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deadlines/calculate", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCalculateEndpointRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	body := `{"expeditionDate":"2024-01-10","typeCode":"APELACAO"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deadlines/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListTypesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deadline-types/", nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "APELACAO") {
		t.Fatalf("expected catalog entry in response, got %s", rec.Body.String())
	}
}
