package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
	"github.com/shopspring/decimal"
)

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error)
	GetBySaleNoFunc      func(ctx context.Context, scope domain.Scope, saleNo string) ([]*domain.Entry, error)
	ListByAccountFunc    func(ctx context.Context, scope domain.Scope, accountID string, from, to *time.Time) ([]*domain.Entry, error)
	UpdateStateFunc      func(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, isDeleted bool) error
	CountSettlementsFunc func(ctx context.Context, tx usecase.Transaction, returnEntryID string) (int, error)
	SumActiveReturnsFunc func(ctx context.Context, tx usecase.Transaction, saleEntryID string) (decimal.Decimal, error)
	CountByAccountFunc   func(ctx context.Context, scope domain.Scope, accountID string) (int64, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) GetBySaleNo(ctx context.Context, scope domain.Scope, saleNo string) ([]*domain.Entry, error) {
	if m.GetBySaleNoFunc != nil {
		return m.GetBySaleNoFunc(ctx, scope, saleNo)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.Scope.Equal(scope) && e.SaleNo == saleNo {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, scope domain.Scope, accountID string, from, to *time.Time) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, scope, accountID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if !e.Scope.Equal(scope) || e.AccountID != accountID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		cp := *e
		entries = append(entries, &cp)
	}
	sortEntries(entries)
	return entries, nil
}

func (m *MockEntryRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, isDeleted bool) error {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, tx, id, status, isDeleted)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.Status = status
	e.IsDeleted = isDeleted
	return nil
}

func (m *MockEntryRepository) CountSettlements(ctx context.Context, tx usecase.Transaction, returnEntryID string) (int, error) {
	if m.CountSettlementsFunc != nil {
		return m.CountSettlementsFunc(ctx, tx, returnEntryID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.entries {
		if e.RefEntryID == returnEntryID && e.Type == domain.EntryPayment && !e.IsDeleted && e.Status != domain.StatusCancelled {
			count++
		}
	}
	return count, nil
}

func (m *MockEntryRepository) SumActiveReturns(ctx context.Context, tx usecase.Transaction, saleEntryID string) (decimal.Decimal, error) {
	if m.SumActiveReturnsFunc != nil {
		return m.SumActiveReturnsFunc(ctx, tx, saleEntryID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, e := range m.entries {
		if e.RefEntryID == saleEntryID && e.Type == domain.EntrySaleReturn && !e.IsDeleted && e.Status != domain.StatusCancelled {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *MockEntryRepository) CountByAccount(ctx context.Context, scope domain.Scope, accountID string) (int64, error) {
	if m.CountByAccountFunc != nil {
		return m.CountByAccountFunc(ctx, scope, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, e := range m.entries {
		if e.Scope.Equal(scope) && e.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

func sortEntries(entries []*domain.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc             func(ctx context.Context, account *domain.Account) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc   func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateCachedBakiyeFunc func(ctx context.Context, tx usecase.Transaction, id string, bakiye decimal.Decimal, updatedAt time.Time) error
	ListFunc               func(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
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
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateCachedBakiye(ctx context.Context, tx usecase.Transaction, id string, bakiye decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateCachedBakiyeFunc != nil {
		return m.UpdateCachedBakiyeFunc(ctx, tx, id, bakiye, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.CachedBakiye = bakiye
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.Scope.Equal(scope) {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	if offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[offset:]
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product

	CreateFunc            func(ctx context.Context, product *domain.Product) error
	GetByIDFunc           func(ctx context.Context, scope domain.Scope, id string) (*domain.Product, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, scope domain.Scope, ids []string) ([]*domain.Product, error)
	AdjustOnHandFunc      func(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Product, error)
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, scope, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[id]; ok && p.Scope.Equal(scope) {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockProductRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, scope domain.Scope, ids []string) ([]*domain.Product, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, scope, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var products []*domain.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.Scope.Equal(scope) {
			cp := *p
			products = append(products, &cp)
		}
	}
	return products, nil
}

func (m *MockProductRepository) AdjustOnHand(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	if m.AdjustOnHandFunc != nil {
		return m.AdjustOnHandFunc(ctx, tx, id, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.OnHand = p.OnHand.Add(delta)
	p.Version++
	p.UpdatedAt = updatedAt
	return nil
}

func (m *MockProductRepository) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var products []*domain.Product
	for _, p := range m.products {
		if p.Scope.Equal(scope) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
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
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.PublishedAt = &publishedAt
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
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns all recorded events for assertions.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
	ListFunc   func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...), nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
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
