package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/adapter/http/handler"
	apimiddleware "github.com/lfmartins/contas/internal/adapter/http/middleware"
	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"checking","initial_balance":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"PUT /api/v1/accounts/{id}/balance",
		"POST /api/v1/accounts/{id}/balance/recompute",
		"GET /api/v1/cards/{id}/bills/{period}",
		"POST /api/v1/cards/{id}/bills/{period}/pay",
		"POST /api/v1/entries/",
		"POST /api/v1/entries/{id}/anticipate",
		"POST /api/v1/series/",
		"POST /api/v1/series/{id}/move",
		"POST /api/v1/series/{id}/truncate",
		"POST /api/v1/goals/",
		"GET /api/v1/goals/progress",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:  &handler.HealthHandler{},
		AccountHandler: handler.NewAccountHandler(&stubAccountService{}, &stubBalanceService{}),
		CardHandler:    handler.NewCardHandler(&stubCardService{}, &stubBillService{}),
		EntryHandler:   handler.NewEntryHandler(&stubEntryService{}, &stubAnticipationService{}),
		SeriesHandler:  handler.NewSeriesHandler(&stubSeriesService{}),
		GoalHandler:    handler.NewGoalHandler(&stubGoalService{}),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct{}

func (stubAccountService) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc"}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (stubAccountService) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

type stubBalanceService struct{}

func (stubBalanceService) Recompute(ctx context.Context, accountID string) (*domain.Account, error) {
	return &domain.Account{ID: accountID}, nil
}

func (stubBalanceService) Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.Entry, error) {
	return nil, nil
}

type stubCardService struct{}

func (stubCardService) CreateCard(ctx context.Context, input usecase.CreateCardInput) (*domain.Card, error) {
	return &domain.Card{ID: "card"}, nil
}

func (stubCardService) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	return &domain.Card{ID: id}, nil
}

func (stubCardService) ListCards(ctx context.Context, limit, offset int) ([]*domain.Card, error) {
	return []*domain.Card{}, nil
}

type stubBillService struct{}

func (stubBillService) BillFor(ctx context.Context, cardID string, month time.Month, year int) (*domain.Bill, error) {
	return &domain.Bill{CardID: cardID}, nil
}

func (stubBillService) PayBill(ctx context.Context, input usecase.PayBillInput) (*domain.Entry, error) {
	return &domain.Entry{ID: "settlement"}, nil
}

func (stubBillService) AvailableLimit(ctx context.Context, cardID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubEntryService struct{}

func (stubEntryService) CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
	return &domain.Entry{ID: "entry"}, nil
}

func (stubEntryService) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return &domain.Entry{ID: id}, nil
}

func (stubEntryService) ListEntries(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
	return []*domain.Entry{}, nil
}

func (stubEntryService) UpdateStatus(ctx context.Context, id string, newStatus domain.Status) (*domain.Entry, error) {
	return &domain.Entry{ID: id, Status: newStatus}, nil
}

func (stubEntryService) UpdateEntry(ctx context.Context, id string, input usecase.UpdateEntryInput) (*domain.Entry, error) {
	return &domain.Entry{ID: id}, nil
}

func (stubEntryService) DeleteEntry(ctx context.Context, id string) error {
	return nil
}

type stubAnticipationService struct{}

func (stubAnticipationService) Anticipate(ctx context.Context, entryID string, discount decimal.Decimal) (*usecase.AnticipationResult, error) {
	return &usecase.AnticipationResult{Entry: &domain.Entry{ID: entryID}}, nil
}

type stubSeriesService struct{}

func (stubSeriesService) ExpandSeries(ctx context.Context, input usecase.ExpandSeriesInput) (*usecase.ExpandResult, error) {
	return &usecase.ExpandResult{SeriesID: "ser"}, nil
}

func (stubSeriesService) MoveSeries(ctx context.Context, seriesID string, deltaPeriods int) (*usecase.MoveResult, error) {
	return &usecase.MoveResult{SeriesID: seriesID}, nil
}

func (stubSeriesService) DeleteFromInstallment(ctx context.Context, seriesID string, fromIndex int) (int, error) {
	return 0, nil
}

type stubGoalService struct{}

func (stubGoalService) CreateGoal(ctx context.Context, input usecase.CreateGoalInput) (*domain.MonthlyGoal, error) {
	return &domain.MonthlyGoal{ID: "goal"}, nil
}

func (stubGoalService) Progress(ctx context.Context, categoryID string, goalType domain.GoalType, month time.Month, year int) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubGoalService) Recompute(ctx context.Context, goalID string) (*domain.MonthlyGoal, error) {
	return &domain.MonthlyGoal{ID: goalID}, nil
}

func (stubGoalService) ListGoals(ctx context.Context, month time.Month, year int) ([]*domain.MonthlyGoal, error) {
	return []*domain.MonthlyGoal{}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
