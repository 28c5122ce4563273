package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a use case error onto the wire. Partial failures of
// bulk operations carry the achieved write count so the caller can decide
// whether to retry the remainder.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	var pf *domain.PartialFailure
	if errors.As(err, &pf) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(dto.ErrorResponse{
			Error:     "partial failure",
			Message:   err.Error(),
			Written:   pf.Written,
			Requested: pf.Requested,
		})
		return
	}

	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsPrecondition(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidRecurrence),
		errors.Is(err, domain.ErrInvalidSplitMode),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrInvalidDayOfMonth),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidInstallment),
		errors.Is(err, domain.ErrMissingDate),
		errors.Is(err, domain.ErrMissingBillPeriod),
		errors.Is(err, domain.ErrMissingFundingSource),
		errors.Is(err, domain.ErrAmbiguousFundingSource),
		errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parsePeriod parses a "YYYY-MM" path or query segment.
func parsePeriod(s string) (time.Month, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, domain.ErrInvalidPeriod
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, domain.ErrInvalidPeriod
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, domain.ErrInvalidPeriod
	}
	return time.Month(month), year, nil
}
