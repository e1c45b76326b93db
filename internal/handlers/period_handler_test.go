package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
	"hearth/internal/validator"
)

// --- mock services ---

type mockPeriodService struct {
	resolveActivePeriodFn func(userID string, now time.Time) (*models.Period, error)
	getActivePeriodFn     func(userID string) (*models.Period, error)
	updateTotalBudgetFn   func(userID, periodID string, totalBudget int64) (*models.Period, error)
	listInactivePeriodsFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Period], error)
}

func (m *mockPeriodService) ResolveActivePeriod(userID string, now time.Time) (*models.Period, error) {
	if m.resolveActivePeriodFn != nil {
		return m.resolveActivePeriodFn(userID, now)
	}
	return &models.Period{}, nil
}

func (m *mockPeriodService) GetActivePeriod(userID string) (*models.Period, error) {
	if m.getActivePeriodFn != nil {
		return m.getActivePeriodFn(userID)
	}
	return &models.Period{}, nil
}

func (m *mockPeriodService) UpdateTotalBudget(userID, periodID string, totalBudget int64) (*models.Period, error) {
	if m.updateTotalBudgetFn != nil {
		return m.updateTotalBudgetFn(userID, periodID, totalBudget)
	}
	return &models.Period{}, nil
}

func (m *mockPeriodService) ListInactivePeriods(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Period], error) {
	if m.listInactivePeriodsFn != nil {
		return m.listInactivePeriodsFn(userID, page)
	}
	return &pagination.PageResponse[models.Period]{}, nil
}

type mockCategoryService struct {
	listByPeriodFn         func(periodID string) ([]models.Category, error)
	ensureCoreCategoriesFn func(periodID string) error
}

func (m *mockCategoryService) ListByPeriod(periodID string) ([]models.Category, error) {
	if m.listByPeriodFn != nil {
		return m.listByPeriodFn(periodID)
	}
	return nil, nil
}

func (m *mockCategoryService) Upsert(_, _, _ string, _ *int64, _, _ string) (*models.Category, error) {
	return &models.Category{}, nil
}

func (m *mockCategoryService) Delete(_, _, _ string) error { return nil }

func (m *mockCategoryService) CarryOver(_ *gorm.DB, _, _ string) error { return nil }

func (m *mockCategoryService) SeedCoreCategories(_ *gorm.DB, _ string) error { return nil }

func (m *mockCategoryService) EnsureCoreCategories(periodID string) error {
	if m.ensureCoreCategoriesFn != nil {
		return m.ensureCoreCategoriesFn(periodID)
	}
	return nil
}

type mockReconcileService struct {
	recalculateFn func(periodID string) error
	diffReportFn  func(periodID string) (*services.DriftReport, error)
}

func (m *mockReconcileService) Recalculate(periodID string) error {
	if m.recalculateFn != nil {
		return m.recalculateFn(periodID)
	}
	return nil
}

func (m *mockReconcileService) DiffReport(periodID string) (*services.DriftReport, error) {
	if m.diffReportFn != nil {
		return m.diffReportFn(periodID)
	}
	return &services.DriftReport{PeriodID: periodID}, nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupPeriodRouter(handler *PeriodHandler, authed bool) *gin.Engine {
	r := gin.New()
	group := r.Group("/")
	if authed {
		group.Use(injectUserID("user-1"))
	}
	group.GET("/periods/current", handler.GetCurrentPeriod)
	group.PUT("/periods/current/budget", handler.UpdateBudget)
	group.POST("/periods/current/repair", handler.Repair)
	group.GET("/periods/current/drift", handler.Drift)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestPeriodHandler_GetCurrentPeriod(t *testing.T) {
	t.Run("returns period with categories", func(t *testing.T) {
		periodSvc := &mockPeriodService{
			resolveActivePeriodFn: func(userID string, _ time.Time) (*models.Period, error) {
				return &models.Period{Base: models.Base{ID: "p1"}, UserID: userID, Year: 2026, Month: 3, IsActive: true}, nil
			},
		}
		categorySvc := &mockCategoryService{
			listByPeriodFn: func(periodID string) ([]models.Category, error) {
				return []models.Category{{PeriodID: periodID, Name: "groceries"}}, nil
			},
		}
		handler := NewPeriodHandler(periodSvc, categorySvc, &mockReconcileService{})
		r := setupPeriodRouter(handler, true)

		rec := doRequest(r, "GET", "/periods/current", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		period := result["period"].(map[string]interface{})
		if period["id"] != "p1" {
			t.Errorf("expected period p1, got %v", period["id"])
		}
		categories := result["categories"].([]interface{})
		if len(categories) != 1 {
			t.Errorf("expected 1 category, got %d", len(categories))
		}
	})

	t.Run("returns 401 without auth context", func(t *testing.T) {
		handler := NewPeriodHandler(&mockPeriodService{}, &mockCategoryService{}, &mockReconcileService{})
		r := setupPeriodRouter(handler, false)

		rec := doRequest(r, "GET", "/periods/current", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})
}

func TestPeriodHandler_UpdateBudget(t *testing.T) {
	t.Run("returns 400 on missing budget", func(t *testing.T) {
		handler := NewPeriodHandler(&mockPeriodService{}, &mockCategoryService{}, &mockReconcileService{})
		r := setupPeriodRouter(handler, true)

		rec := doRequest(r, "PUT", "/periods/current/budget", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("maps superseded period to 409", func(t *testing.T) {
		periodSvc := &mockPeriodService{
			updateTotalBudgetFn: func(_, _ string, _ int64) (*models.Period, error) {
				return nil, apperrors.ErrPeriodNotEditable
			},
		}
		handler := NewPeriodHandler(periodSvc, &mockCategoryService{}, &mockReconcileService{})
		r := setupPeriodRouter(handler, true)

		rec := doRequest(r, "PUT", "/periods/current/budget", `{"total_budget":250000}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PERIOD_NOT_EDITABLE")
	})
}

func TestPeriodHandler_Repair(t *testing.T) {
	t.Run("ensures core categories then recalculates", func(t *testing.T) {
		var ensured, recalculated bool
		periodSvc := &mockPeriodService{
			getActivePeriodFn: func(string) (*models.Period, error) {
				return &models.Period{Base: models.Base{ID: "p1"}, IsActive: true}, nil
			},
		}
		categorySvc := &mockCategoryService{
			ensureCoreCategoriesFn: func(periodID string) error {
				ensured = periodID == "p1"
				return nil
			},
		}
		reconcileSvc := &mockReconcileService{
			recalculateFn: func(periodID string) error {
				if !ensured {
					t.Error("expected core categories ensured before recalculation")
				}
				recalculated = periodID == "p1"
				return nil
			},
		}
		handler := NewPeriodHandler(periodSvc, categorySvc, reconcileSvc)
		r := setupPeriodRouter(handler, true)

		rec := doRequest(r, "POST", "/periods/current/repair", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !ensured || !recalculated {
			t.Error("expected both repair steps to run")
		}
	})

	t.Run("returns 404 with no active period", func(t *testing.T) {
		periodSvc := &mockPeriodService{
			getActivePeriodFn: func(string) (*models.Period, error) {
				return nil, apperrors.ErrPeriodNotFound
			},
		}
		handler := NewPeriodHandler(periodSvc, &mockCategoryService{}, &mockReconcileService{})
		r := setupPeriodRouter(handler, true)

		rec := doRequest(r, "POST", "/periods/current/repair", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestPeriodHandler_Drift(t *testing.T) {
	t.Run("returns report without repairing", func(t *testing.T) {
		periodSvc := &mockPeriodService{
			getActivePeriodFn: func(string) (*models.Period, error) {
				return &models.Period{Base: models.Base{ID: "p1"}, IsActive: true}, nil
			},
		}
		reconcileSvc := &mockReconcileService{
			diffReportFn: func(periodID string) (*services.DriftReport, error) {
				return &services.DriftReport{
					PeriodID:           periodID,
					UncategorizedSpent: 4200,
					Categories: []services.CategoryDiff{
						{Category: "groceries", StoredSpent: 50, ActualSpent: 3000},
					},
				}, nil
			},
			recalculateFn: func(string) error {
				t.Error("drift endpoint must not repair")
				return nil
			},
		}
		handler := NewPeriodHandler(periodSvc, &mockCategoryService{}, reconcileSvc)
		r := setupPeriodRouter(handler, true)

		rec := doRequest(r, "GET", "/periods/current/drift", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		report := result["report"].(map[string]interface{})
		if report["uncategorized_spent"] != float64(4200) {
			t.Errorf("expected uncategorized spend 4200, got %v", report["uncategorized_spent"])
		}
	})
}
