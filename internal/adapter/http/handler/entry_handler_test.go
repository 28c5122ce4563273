package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

type entryServiceStub struct {
	createFn       func(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error)
	getFn          func(ctx context.Context, id string) (*domain.Entry, error)
	listFn         func(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error)
	updateStatusFn func(ctx context.Context, id string, newStatus domain.Status) (*domain.Entry, error)
	updateFn       func(ctx context.Context, id string, input usecase.UpdateEntryInput) (*domain.Entry, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (s *entryServiceStub) CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
	return s.createFn(ctx, input)
}

func (s *entryServiceStub) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return s.getFn(ctx, id)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
	return s.listFn(ctx, filter)
}

func (s *entryServiceStub) UpdateStatus(ctx context.Context, id string, newStatus domain.Status) (*domain.Entry, error) {
	return s.updateStatusFn(ctx, id, newStatus)
}

func (s *entryServiceStub) UpdateEntry(ctx context.Context, id string, input usecase.UpdateEntryInput) (*domain.Entry, error) {
	return s.updateFn(ctx, id, input)
}

func (s *entryServiceStub) DeleteEntry(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type anticipationServiceStub struct {
	anticipateFn func(ctx context.Context, entryID string, discount decimal.Decimal) (*usecase.AnticipationResult, error)
}

func (s *anticipationServiceStub) Anticipate(ctx context.Context, entryID string, discount decimal.Decimal) (*usecase.AnticipationResult, error) {
	return s.anticipateFn(ctx, entryID, discount)
}

func TestEntryHandler_Create_Success(t *testing.T) {
	occursOn := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	billPeriod := domain.Period{Month: time.July, Year: 2025}
	entry := &domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.NewFromInt(80),
		OccursOn:   occursOn,
		Status:     domain.StatusPending,
		CardID:     "card-1",
		BillPeriod: &billPeriod,
	}

	var captured usecase.CreateEntryInput
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
			captured = input
			return entry, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateEntryRequest{
		Kind:     "expense",
		Amount:   decimal.NewFromInt(80),
		OccursOn: occursOn,
		CardID:   "card-1",
	})

	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Kind != domain.KindExpense || captured.CardID != "card-1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.BillPeriod == nil || *resp.BillPeriod != "2025-07" {
		t.Fatalf("expected bill period 2025-07, got %v", resp.BillPeriod)
	}
}

func TestEntryHandler_Create_AmbiguousFunding(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error) {
			return nil, domain.ErrAmbiguousFundingSource
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateEntryRequest{
		Kind:      "expense",
		Amount:    decimal.NewFromInt(10),
		OccursOn:  time.Now(),
		AccountID: "acc-1",
		CardID:    "card-1",
	})

	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEntryHandler_List_ParsesFilters(t *testing.T) {
	var captured usecase.EntryFilter
	handler := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
			captured = filter
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/entries?kind=expense&card_id=card-1&month=7&year=2025&include_settlements=true&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Kind != domain.KindExpense || captured.CardID != "card-1" {
		t.Fatalf("unexpected filter: %+v", captured)
	}
	if captured.Month != time.July || captured.Year != 2025 {
		t.Fatalf("expected July 2025 filter, got %v %d", captured.Month, captured.Year)
	}
	if !captured.IncludeSettlements || captured.Limit != 5 {
		t.Fatalf("unexpected filter: %+v", captured)
	}
}

func TestEntryHandler_UpdateStatus(t *testing.T) {
	entry := &domain.Entry{ID: "e-1", Status: domain.StatusCancelled}

	var capturedStatus domain.Status
	handler := NewEntryHandler(&entryServiceStub{
		updateStatusFn: func(ctx context.Context, id string, newStatus domain.Status) (*domain.Entry, error) {
			capturedStatus = newStatus
			return entry, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.UpdateStatusRequest{Status: "cancelled"})
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/entries/e-1/status", bytes.NewReader(body)), "id", "e-1")
	rec := httptest.NewRecorder()

	handler.UpdateStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedStatus != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", capturedStatus)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	var deleted string
	handler := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/entries/e-1", nil), "id", "e-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != "e-1" {
		t.Fatalf("expected e-1 deleted, got %s", deleted)
	}
}

func TestEntryHandler_Anticipate_Success(t *testing.T) {
	from := domain.Period{Month: time.September, Year: 2025}
	current := domain.Period{Month: time.July, Year: 2025}
	result := &usecase.AnticipationResult{
		Entry: &domain.Entry{
			ID:              "e-1",
			CardID:          "card-1",
			BillPeriod:      &current,
			AnticipatedFrom: &from,
		},
		Discount: &domain.Entry{
			ID:             "e-disc",
			DiscountAmount: decimal.NewFromInt(5),
			RelatedEntryID: "e-1",
		},
	}

	handler := NewEntryHandler(nil, &anticipationServiceStub{
		anticipateFn: func(ctx context.Context, entryID string, discount decimal.Decimal) (*usecase.AnticipationResult, error) {
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.AnticipateRequest{Discount: decimal.NewFromInt(5)})
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/entries/e-1/anticipate", bytes.NewReader(body)), "id", "e-1")
	rec := httptest.NewRecorder()

	handler.Anticipate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AnticipationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Entry.AnticipatedFrom == nil || *resp.Entry.AnticipatedFrom != "2025-09" {
		t.Fatalf("expected anticipated_from 2025-09, got %v", resp.Entry.AnticipatedFrom)
	}
	if resp.Discount == nil || resp.Discount.ID != "e-disc" {
		t.Fatalf("expected discount entry in response")
	}
}

func TestEntryHandler_Anticipate_Rejected(t *testing.T) {
	handler := NewEntryHandler(nil, &anticipationServiceStub{
		anticipateFn: func(ctx context.Context, entryID string, discount decimal.Decimal) (*usecase.AnticipationResult, error) {
			return nil, domain.ErrPeriodNotFuture
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/entries/e-1/anticipate", nil), "id", "e-1")
	rec := httptest.NewRecorder()

	handler.Anticipate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
