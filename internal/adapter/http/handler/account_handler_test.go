package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

type accountServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, id string) (*domain.Account, error)
	listFn   func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return s.listFn(ctx, limit, offset)
}

type balanceServiceStub struct {
	recomputeFn func(ctx context.Context, accountID string) (*domain.Account, error)
	adjustFn    func(ctx context.Context, input usecase.AdjustInput) (*domain.Entry, error)
}

func (s *balanceServiceStub) Recompute(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.recomputeFn(ctx, accountID)
}

func (s *balanceServiceStub) Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.Entry, error) {
	return s.adjustFn(ctx, input)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:             "acc-1",
		Name:           "checking",
		InitialBalance: decimal.NewFromInt(100),
		Balance:        decimal.NewFromInt(100),
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Name:           "checking",
		InitialBalance: decimal.NewFromInt(100),
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "checking" || !captured.InitialBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_AdjustBalance_CreatesEntry(t *testing.T) {
	entry := &domain.Entry{
		ID:     "e-adj",
		Kind:   domain.KindIncome,
		Amount: decimal.NewFromInt(50),
		Status: domain.StatusCompleted,
	}

	var captured usecase.AdjustInput
	handler := NewAccountHandler(nil, &balanceServiceStub{
		adjustFn: func(ctx context.Context, input usecase.AdjustInput) (*domain.Entry, error) {
			captured = input
			return entry, nil
		},
	})

	body, _ := json.Marshal(dto.AdjustBalanceRequest{
		NewBalance:  decimal.NewFromInt(150),
		Description: "statement says 150",
	})

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/accounts/acc-1/balance", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.AdjustBalance(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || !captured.NewBalance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestAccountHandler_AdjustBalance_NoChange(t *testing.T) {
	handler := NewAccountHandler(nil, &balanceServiceStub{
		adjustFn: func(ctx context.Context, input usecase.AdjustInput) (*domain.Entry, error) {
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.AdjustBalanceRequest{NewBalance: decimal.NewFromInt(100)})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/accounts/acc-1/balance", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.AdjustBalance(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 when nothing changed, got %d", rec.Code)
	}
}

func TestAccountHandler_RecomputeBalance_ServiceError(t *testing.T) {
	handler := NewAccountHandler(nil, &balanceServiceStub{
		recomputeFn: func(ctx context.Context, accountID string) (*domain.Account, error) {
			return nil, errors.New("db error")
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/balance/recompute", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.RecomputeBalance(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
