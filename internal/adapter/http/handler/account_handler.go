package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// BalanceService defines the reconciliation behavior needed by AccountHandler.
type BalanceService interface {
	Recompute(ctx context.Context, accountID string) (*domain.Account, error)
	Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.Entry, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	balanceUC BalanceService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, balanceUC BalanceService) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		balanceUC: balanceUC,
	}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// RecomputeBalance rebuilds the account's cached balance from its entries.
func (h *AccountHandler) RecomputeBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.balanceUC.Recompute(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to recompute balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// AdjustBalance records a manual correction entry that moves the account's
// balance to the declared value.
func (h *AccountHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.balanceUC.Adjust(r.Context(), usecase.AdjustInput{
		AccountID:   id,
		NewBalance:  req.NewBalance,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, err, "failed to adjust balance")
		return
	}

	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}
