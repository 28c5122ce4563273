package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
)

func TestEntryLifecycle(t *testing.T) {
	testDB, router, ctx := setupTest(t)

	account := testDB.CreateTestAccount(ctx, "checking", decimal.NewFromInt(1000))

	// Past occurrence completes immediately
	w := doRequest(t, router, http.MethodPost, "/api/v1/entries/", dto.CreateEntryRequest{
		Kind:        "expense",
		Amount:      decimal.NewFromFloat(250.50),
		Description: "groceries",
		OccursOn:    time.Now().UTC().AddDate(0, 0, -1),
		AccountID:   account.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created dto.EntryResponse
	decodeBody(t, w, &created)
	if created.Status != "completed" {
		t.Errorf("expected completed status, got %s", created.Status)
	}

	// Debit reflects in the account balance
	w = doRequest(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var acc dto.AccountResponse
	decodeBody(t, w, &acc)
	if !acc.Balance.Equal(decimal.NewFromFloat(749.50)) {
		t.Errorf("expected balance 749.50, got %s", acc.Balance)
	}

	// Cancelling restores it
	w = doRequest(t, router, http.MethodPatch, "/api/v1/entries/"+created.ID+"/status",
		dto.UpdateStatusRequest{Status: "cancelled"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID, nil)
	decodeBody(t, w, &acc)
	if !acc.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance restored to 1000, got %s", acc.Balance)
	}
}

func TestCardEntryBillAssignment(t *testing.T) {
	testDB, router, ctx := setupTest(t)

	account := testDB.CreateTestAccount(ctx, "checking", decimal.NewFromInt(5000))
	card := testDB.CreateTestCard(ctx, "visa", 10, 20, account.ID)

	cases := []struct {
		name       string
		occursOn   time.Time
		wantPeriod string
	}{
		{
			name:       "before closing day bills in the purchase month",
			occursOn:   time.Date(2025, time.July, 5, 12, 0, 0, 0, time.UTC),
			wantPeriod: "2025-07",
		},
		{
			name:       "on the closing day still bills in the purchase month",
			occursOn:   time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC),
			wantPeriod: "2025-07",
		},
		{
			name:       "after closing day rolls into the next month",
			occursOn:   time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC),
			wantPeriod: "2025-08",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/v1/entries/", dto.CreateEntryRequest{
				Kind:     "expense",
				Amount:   decimal.NewFromInt(100),
				OccursOn: tc.occursOn,
				CardID:   card.ID,
			})
			if w.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
			}

			var resp dto.EntryResponse
			decodeBody(t, w, &resp)
			if resp.BillPeriod == nil || *resp.BillPeriod != tc.wantPeriod {
				t.Errorf("expected bill period %s, got %v", tc.wantPeriod, resp.BillPeriod)
			}
		})
	}
}

func TestEntryRejectsAmbiguousFunding(t *testing.T) {
	testDB, router, ctx := setupTest(t)

	account := testDB.CreateTestAccount(ctx, "checking", decimal.NewFromInt(1000))
	card := testDB.CreateTestCard(ctx, "visa", 10, 20, account.ID)

	w := doRequest(t, router, http.MethodPost, "/api/v1/entries/", dto.CreateEntryRequest{
		Kind:      "expense",
		Amount:    decimal.NewFromInt(50),
		OccursOn:  time.Now().UTC(),
		AccountID: account.ID,
		CardID:    card.ID,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for dual funding, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEntryListFilters(t *testing.T) {
	testDB, router, ctx := setupTest(t)

	account := testDB.CreateTestAccount(ctx, "checking", decimal.NewFromInt(1000))

	for i := 0; i < 3; i++ {
		w := doRequest(t, router, http.MethodPost, "/api/v1/entries/", dto.CreateEntryRequest{
			Kind:      "expense",
			Amount:    decimal.NewFromInt(int64(10 * (i + 1))),
			OccursOn:  time.Date(2025, time.June, 1+i, 0, 0, 0, 0, time.UTC),
			AccountID: account.ID,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("failed to create entry %d: %s", i, w.Body.String())
		}
	}

	w := doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/entries/?account_id=%s&month=6&year=2025", account.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var list dto.ListEntriesResponse
	decodeBody(t, w, &list)
	if len(list.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(list.Entries))
	}
}
