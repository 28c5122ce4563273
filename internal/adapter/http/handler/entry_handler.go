package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	ListEntries(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error)
	UpdateStatus(ctx context.Context, id string, newStatus domain.Status) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, id string, input usecase.UpdateEntryInput) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// AnticipationService defines the anticipation behavior needed by EntryHandler.
type AnticipationService interface {
	Anticipate(ctx context.Context, entryID string, discount decimal.Decimal) (*usecase.AnticipationResult, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC        EntryService
	anticipationUC AnticipationService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService, anticipationUC AnticipationService) *EntryHandler {
	return &EntryHandler{
		entryUC:        entryUC,
		anticipationUC: anticipationUC,
	}
}

// Create records a new entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.CreateEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get entry")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists entries matching the query filters.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := usecase.EntryFilter{
		Kind:               domain.Kind(q.Get("kind")),
		CategoryID:         q.Get("category_id"),
		AccountID:          q.Get("account_id"),
		CardID:             q.Get("card_id"),
		SeriesID:           q.Get("series_id"),
		Month:              time.Month(parseIntQuery(r, "month", 0)),
		Year:               parseIntQuery(r, "year", 0),
		IncludeSettlements: q.Get("include_settlements") == "true",
		Limit:              parseIntQuery(r, "limit", 20),
		Offset:             parseIntQuery(r, "offset", 0),
	}

	entries, err := h.entryUC.ListEntries(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}

// UpdateStatus transitions an entry between statuses.
func (h *EntryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.UpdateStatus(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		writeDomainError(w, err, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Update edits an entry's description, amount or category.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.UpdateEntry(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to update entry")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Delete removes an entry, reversing its derived contributions.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.entryUC.DeleteEntry(r.Context(), id); err != nil {
		writeDomainError(w, err, "failed to delete entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Anticipate pulls a future installment into the current billing period.
func (h *EntryHandler) Anticipate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AnticipateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	result, err := h.anticipationUC.Anticipate(r.Context(), id, req.Discount)
	if err != nil {
		writeDomainError(w, err, "failed to anticipate entry")
		return
	}

	resp := dto.AnticipationResponse{Entry: dto.EntryFromDomain(result.Entry)}
	if result.Discount != nil {
		resp.Discount = dto.EntryFromDomain(result.Discount)
	}

	writeJSON(w, http.StatusOK, resp)
}
