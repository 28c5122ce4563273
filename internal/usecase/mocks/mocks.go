package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

// MockEntryRepository is a map-backed mock implementation of EntryRepository.
// Set the XxxFunc fields to override individual methods.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry
	order   []string

	CreateFunc              func(ctx context.Context, entry *domain.Entry) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Entry, error)
	UpdateFunc              func(ctx context.Context, entry *domain.Entry) error
	DeleteFunc              func(ctx context.Context, id string) error
	ListFunc                func(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error)
	ListBySeriesFunc        func(ctx context.Context, seriesID string) ([]*domain.Entry, error)
	ListByCardFunc          func(ctx context.Context, cardID string) ([]*domain.Entry, error)
	ListByCardPeriodFunc    func(ctx context.Context, cardID string, p domain.Period) ([]*domain.Entry, error)
	ListByAccountFunc       func(ctx context.Context, accountID string) ([]*domain.Entry, error)
	ListByDestinationFunc   func(ctx context.Context, accountID string) ([]*domain.Entry, error)
	ListByCategoryOccursFun func(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error)
	ListByCategoryBillFunc  func(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error)
	FindSettlementFunc      func(ctx context.Context, cardID string, p domain.Period) (*domain.Entry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

// Seed inserts entries directly, bypassing any CreateFunc override.
func (m *MockEntryRepository) Seed(entries ...*domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if _, ok := m.entries[e.ID]; !ok {
			m.order = append(m.order, e.ID)
		}
		m.entries[e.ID] = e
	}
}

// Stored returns the entry as currently held, or nil.
func (m *MockEntryRepository) Stored(id string) *domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[id]
}

// Count returns the number of stored entries.
func (m *MockEntryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		m.order = append(m.order, entry.ID)
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.entries, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockEntryRepository) List(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return m.collect(func(e *domain.Entry) bool {
		if filter.Kind != "" && e.Kind != filter.Kind {
			return false
		}
		if filter.CategoryID != "" && e.CategoryID != filter.CategoryID {
			return false
		}
		if filter.AccountID != "" && e.AccountID != filter.AccountID {
			return false
		}
		if filter.CardID != "" && e.CardID != filter.CardID {
			return false
		}
		if filter.SeriesID != "" && e.SeriesID != filter.SeriesID {
			return false
		}
		if filter.Year != 0 {
			p := e.EffectivePeriod()
			if p.Year != filter.Year || (filter.Month != 0 && p.Month != filter.Month) {
				return false
			}
		}
		if !filter.IncludeSettlements && e.IsSettlement() {
			return false
		}
		return true
	}), nil
}

func (m *MockEntryRepository) ListBySeries(ctx context.Context, seriesID string) ([]*domain.Entry, error) {
	if m.ListBySeriesFunc != nil {
		return m.ListBySeriesFunc(ctx, seriesID)
	}
	members := m.collect(func(e *domain.Entry) bool { return e.SeriesID == seriesID })
	sort.Slice(members, func(i, j int) bool {
		return members[i].InstallmentIndex < members[j].InstallmentIndex
	})
	return members, nil
}

func (m *MockEntryRepository) ListByCard(ctx context.Context, cardID string) ([]*domain.Entry, error) {
	if m.ListByCardFunc != nil {
		return m.ListByCardFunc(ctx, cardID)
	}
	return m.collect(func(e *domain.Entry) bool { return e.CardID == cardID }), nil
}

func (m *MockEntryRepository) ListByCardPeriod(ctx context.Context, cardID string, p domain.Period) ([]*domain.Entry, error) {
	if m.ListByCardPeriodFunc != nil {
		return m.ListByCardPeriodFunc(ctx, cardID, p)
	}
	return m.collect(func(e *domain.Entry) bool {
		return e.CardID == cardID && e.BillPeriod != nil && e.BillPeriod.Compare(p) == 0
	}), nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	return m.collect(func(e *domain.Entry) bool { return e.AccountID == accountID }), nil
}

func (m *MockEntryRepository) ListByDestination(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	if m.ListByDestinationFunc != nil {
		return m.ListByDestinationFunc(ctx, accountID)
	}
	return m.collect(func(e *domain.Entry) bool { return e.DestinationAccountID == accountID }), nil
}

func (m *MockEntryRepository) ListByCategoryOccurs(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error) {
	if m.ListByCategoryOccursFun != nil {
		return m.ListByCategoryOccursFun(ctx, categoryID, p)
	}
	return m.collect(func(e *domain.Entry) bool {
		return e.CategoryID == categoryID && !e.CardFunded() && domain.PeriodOf(e.OccursOn).Compare(p) == 0
	}), nil
}

func (m *MockEntryRepository) ListByCategoryBill(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error) {
	if m.ListByCategoryBillFunc != nil {
		return m.ListByCategoryBillFunc(ctx, categoryID, p)
	}
	return m.collect(func(e *domain.Entry) bool {
		return e.CategoryID == categoryID && e.CardFunded() && e.BillPeriod != nil && e.BillPeriod.Compare(p) == 0
	}), nil
}

func (m *MockEntryRepository) FindSettlement(ctx context.Context, cardID string, p domain.Period) (*domain.Entry, error) {
	if m.FindSettlementFunc != nil {
		return m.FindSettlementFunc(ctx, cardID, p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		e := m.entries[id]
		if e.SettlesCardID == cardID && e.SettlesPeriod != nil && e.SettlesPeriod.Compare(p) == 0 {
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) collect(match func(*domain.Entry) bool) []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, id := range m.order {
		if e := m.entries[id]; match(e) {
			out = append(out, e)
		}
	}
	return out
}

// MockCardRepository is a map-backed mock implementation of CardRepository.
type MockCardRepository struct {
	mu    sync.RWMutex
	cards map[string]*domain.Card

	CreateFunc  func(ctx context.Context, card *domain.Card) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Card, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.Card, error)
}

func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{
		cards: make(map[string]*domain.Card),
	}
}

func (m *MockCardRepository) Seed(cards ...*domain.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cards {
		m.cards[c.ID] = c
	}
}

func (m *MockCardRepository) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
	return nil
}

func (m *MockCardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.cards[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCardNotFound
}

func (m *MockCardRepository) List(ctx context.Context, limit, offset int) ([]*domain.Card, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.Card
	for _, c := range m.cards {
		cards = append(cards, c)
	}
	return cards, nil
}

// MockAccountRepository is a map-backed mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, account *domain.Account) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	UpdateBalanceFunc func(ctx context.Context, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
}

func (m *MockAccountRepository) Stored(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[id]
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		a.Balance = balance
		a.UpdatedAt = updatedAt
	}
	return nil
}

// MockGoalRepository is a map-backed mock implementation of GoalRepository.
type MockGoalRepository struct {
	mu    sync.RWMutex
	goals map[string]*domain.MonthlyGoal

	CreateFunc               func(ctx context.Context, goal *domain.MonthlyGoal) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.MonthlyGoal, error)
	FindByCategoryPeriodFunc func(ctx context.Context, categoryID string, goalType domain.GoalType, p domain.Period) (*domain.MonthlyGoal, error)
	ListFunc                 func(ctx context.Context, p domain.Period) ([]*domain.MonthlyGoal, error)
	UpdateCurrentFunc        func(ctx context.Context, id string, current decimal.Decimal, updatedAt time.Time) error
}

func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{
		goals: make(map[string]*domain.MonthlyGoal),
	}
}

func (m *MockGoalRepository) Seed(goals ...*domain.MonthlyGoal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range goals {
		m.goals[g.ID] = g
	}
}

func (m *MockGoalRepository) Stored(id string) *domain.MonthlyGoal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.goals[id]
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.MonthlyGoal) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, goal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goal.ID] = goal
	return nil
}

func (m *MockGoalRepository) GetByID(ctx context.Context, id string) (*domain.MonthlyGoal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.goals[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGoalNotFound
}

func (m *MockGoalRepository) FindByCategoryPeriod(ctx context.Context, categoryID string, goalType domain.GoalType, p domain.Period) (*domain.MonthlyGoal, error) {
	if m.FindByCategoryPeriodFunc != nil {
		return m.FindByCategoryPeriodFunc(ctx, categoryID, goalType, p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.goals {
		if g.CategoryID == categoryID && g.GoalType == goalType && g.Period.Compare(p) == 0 {
			return g, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

func (m *MockGoalRepository) List(ctx context.Context, p domain.Period) ([]*domain.MonthlyGoal, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var goals []*domain.MonthlyGoal
	for _, g := range m.goals {
		if g.Period.Compare(p) == 0 {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

func (m *MockGoalRepository) UpdateCurrent(ctx context.Context, id string, current decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateCurrentFunc != nil {
		return m.UpdateCurrentFunc(ctx, id, current, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.goals[id]; ok {
		g.CurrentAmount = current
		g.UpdatedAt = updatedAt
	}
	return nil
}

// MockOutboxRepository is a slice-backed mock implementation of
// OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns a copy of all events written so far.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockClock is a mock implementation of Clock returning a fixed time.
type MockClock struct {
	NowFunc func() time.Time
	Time    time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{Time: t}
}

func (m *MockClock) Now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return m.Time
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
