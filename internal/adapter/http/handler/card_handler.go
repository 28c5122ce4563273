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

// CardService defines the behavior needed by CardHandler.
type CardService interface {
	CreateCard(ctx context.Context, input usecase.CreateCardInput) (*domain.Card, error)
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	ListCards(ctx context.Context, limit, offset int) ([]*domain.Card, error)
}

// BillService defines the bill behavior needed by CardHandler.
type BillService interface {
	BillFor(ctx context.Context, cardID string, month time.Month, year int) (*domain.Bill, error)
	PayBill(ctx context.Context, input usecase.PayBillInput) (*domain.Entry, error)
	AvailableLimit(ctx context.Context, cardID string) (decimal.Decimal, error)
}

// CardHandler handles card-related HTTP requests, bills included.
type CardHandler struct {
	cardUC CardService
	billUC BillService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardUC CardService, billUC BillService) *CardHandler {
	return &CardHandler{
		cardUC: cardUC,
		billUC: billUC,
	}
}

// Create registers a new card.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	card, err := h.cardUC.CreateCard(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create card")
		return
	}

	writeJSON(w, http.StatusCreated, dto.CardFromDomain(card))
}

// Get retrieves a card by ID.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing card ID", "")
		return
	}

	card, err := h.cardUC.GetCard(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get card")
		return
	}

	writeJSON(w, http.StatusOK, dto.CardFromDomain(card))
}

// List lists cards.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	cards, err := h.cardUC.ListCards(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cards", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCardsResponse{
		Cards: dto.CardsFromDomain(cards),
		Total: int64(len(cards)),
	})
}

// GetBill returns the derived bill view for one period.
func (h *CardHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	month, year, err := parsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill period", err.Error())
		return
	}

	bill, err := h.billUC.BillFor(r.Context(), id, month, year)
	if err != nil {
		writeDomainError(w, err, "failed to get bill")
		return
	}

	writeJSON(w, http.StatusOK, dto.BillFromDomain(bill))
}

// PayBill settles the bill for one period.
func (h *CardHandler) PayBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	month, year, err := parsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill period", err.Error())
		return
	}

	var req dto.PayBillRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	entry, err := h.billUC.PayBill(r.Context(), usecase.PayBillInput{
		CardID:    id,
		Month:     month,
		Year:      year,
		AccountID: req.AccountID,
	})
	if err != nil {
		writeDomainError(w, err, "failed to pay bill")
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// AvailableLimit reports the card's remaining credit.
func (h *CardHandler) AvailableLimit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing card ID", "")
		return
	}

	card, err := h.cardUC.GetCard(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get card")
		return
	}

	available, err := h.billUC.AvailableLimit(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to compute available limit")
		return
	}

	writeJSON(w, http.StatusOK, dto.AvailableLimitResponse{
		CardID:         card.ID,
		CreditLimit:    card.CreditLimit,
		AvailableLimit: available,
	})
}
