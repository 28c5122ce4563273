package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/lfmartins/contas/internal/adapter/http"
	"github.com/lfmartins/contas/internal/adapter/http/handler"
	postgresRepo "github.com/lfmartins/contas/internal/adapter/repository/postgres"
	redisRepo "github.com/lfmartins/contas/internal/adapter/repository/redis"
	"github.com/lfmartins/contas/internal/usecase"
	"github.com/lfmartins/contas/tests/testutil"
)

// newTestRouter wires the full HTTP stack against the test database, with
// an in-process redis for caching and idempotency.
func newTestRouter(t *testing.T, testDB *testutil.TestDB) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	pool := testDB.Pool
	log := zerolog.Nop()

	accountRepo := postgresRepo.NewAccountRepository(pool)
	cardRepo := postgresRepo.NewCardRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool, postgresRepo.NewRetrier(log))
	goalRepo := postgresRepo.NewGoalRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	clock := usecase.SystemClock{}

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, clock, log)
	cardUC := usecase.NewCardUseCase(cardRepo, accountRepo, idGen, clock, log)
	entryUC := usecase.NewEntryUseCase(entryRepo, accountRepo, cardRepo, goalRepo, outboxRepo, cache, idGen, clock, log, nil)
	seriesUC := usecase.NewSeriesUseCase(entryRepo, accountRepo, cardRepo, goalRepo, outboxRepo, cache, idGen, clock, log, nil)
	anticipationUC := usecase.NewAnticipationUseCase(entryRepo, cardRepo, goalRepo, outboxRepo, cache, idGen, clock, log, nil)
	billUC := usecase.NewBillUseCase(entryRepo, cardRepo, accountRepo, outboxRepo, cache, idGen, clock, log, nil)
	goalUC := usecase.NewGoalUseCase(goalRepo, entryRepo, cache, idGen, clock, log, nil)
	balanceUC := usecase.NewBalanceUseCase(entryRepo, accountRepo, outboxRepo, idGen, clock, log, nil)

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, balanceUC),
		CardHandler:      handler.NewCardHandler(cardUC, billUC),
		EntryHandler:     handler.NewEntryHandler(entryUC, anticipationUC),
		SeriesHandler:    handler.NewSeriesHandler(seriesUC),
		GoalHandler:      handler.NewGoalHandler(goalUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		Logger:           log,
	})
}

func doRequest(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to parse response %s: %v", w.Body.String(), err)
	}
}

func setupTest(t *testing.T) (*testutil.TestDB, http.Handler, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	return testDB, newTestRouter(t, testDB), ctx
}
