package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/usecase"
)

// SeriesService defines the behavior needed by SeriesHandler.
type SeriesService interface {
	ExpandSeries(ctx context.Context, input usecase.ExpandSeriesInput) (*usecase.ExpandResult, error)
	MoveSeries(ctx context.Context, seriesID string, deltaPeriods int) (*usecase.MoveResult, error)
	DeleteFromInstallment(ctx context.Context, seriesID string, fromIndex int) (int, error)
}

// SeriesHandler handles series-related HTTP requests.
type SeriesHandler struct {
	seriesUC SeriesService
}

// NewSeriesHandler creates a new SeriesHandler.
func NewSeriesHandler(seriesUC SeriesService) *SeriesHandler {
	return &SeriesHandler{seriesUC: seriesUC}
}

// Expand creates the member entries of one recurrence.
func (h *SeriesHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req dto.ExpandSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.seriesUC.ExpandSeries(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to expand series")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpandSeriesResponse{
		SeriesID: result.SeriesID,
		Written:  result.Written,
		Entries:  dto.EntriesFromDomain(result.Entries),
	})
}

// Move shifts every member of a series across billing periods.
func (h *SeriesHandler) Move(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.MoveSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.seriesUC.MoveSeries(r.Context(), id, req.DeltaPeriods)
	if err != nil {
		writeDomainError(w, err, "failed to move series")
		return
	}

	writeJSON(w, http.StatusOK, dto.MoveSeriesResponse{
		SeriesID: result.SeriesID,
		Moved:    result.Moved,
		Total:    result.Total,
	})
}

// Truncate removes a series' members from one installment onward.
func (h *SeriesHandler) Truncate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.TruncateSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	removed, err := h.seriesUC.DeleteFromInstallment(r.Context(), id, req.FromInstallment)
	if err != nil {
		writeDomainError(w, err, "failed to truncate series")
		return
	}

	writeJSON(w, http.StatusOK, dto.TruncateSeriesResponse{
		SeriesID: id,
		Removed:  removed,
	})
}
