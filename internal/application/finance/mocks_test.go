package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// ============================================================================
// Mocks
// ============================================================================

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Append(ctx context.Context, entry *finance.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) AppendAll(ctx context.Context, entries []*finance.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) ([]finance.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerEntryRepository) SumForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerEntryRepository) SumIncomeForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerEntryRepository) SumOutflowForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var _ finance.LedgerEntryRepository = (*MockLedgerEntryRepository)(nil)

// MockDueRepository is a mock implementation of DueRepository
type MockDueRepository struct {
	mock.Mock
}

func (m *MockDueRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Due, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Due), args.Error(1)
}

func (m *MockDueRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Due, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Due), args.Error(1)
}

func (m *MockDueRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.DueFilter) ([]finance.Due, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Due), args.Error(1)
}

func (m *MockDueRepository) FindByResident(ctx context.Context, tenantID, residentID uuid.UUID, filter finance.DueFilter) ([]finance.Due, error) {
	args := m.Called(ctx, tenantID, residentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Due), args.Error(1)
}

func (m *MockDueRepository) FindReceiptPending(ctx context.Context, tenantID uuid.UUID, filter finance.DueFilter) ([]finance.Due, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Due), args.Error(1)
}

func (m *MockDueRepository) ExistsForPeriod(ctx context.Context, tenantID, residentID uuid.UUID, description, period string) (bool, error) {
	args := m.Called(ctx, tenantID, residentID, description, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockDueRepository) Save(ctx context.Context, due *finance.Due) error {
	args := m.Called(ctx, due)
	return args.Error(0)
}

func (m *MockDueRepository) SaveWithLock(ctx context.Context, due *finance.Due) error {
	args := m.Called(ctx, due)
	return args.Error(0)
}

func (m *MockDueRepository) SaveWithLockAndEntry(ctx context.Context, due *finance.Due, entry *finance.LedgerEntry) error {
	args := m.Called(ctx, due, entry)
	return args.Error(0)
}

func (m *MockDueRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.DueFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

var _ finance.DueRepository = (*MockDueRepository)(nil)

// MockExpenseRepository is a mock implementation of ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) SaveWithEntry(ctx context.Context, expense *finance.Expense, entry *finance.LedgerEntry) error {
	args := m.Called(ctx, expense, entry)
	return args.Error(0)
}

func (m *MockExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

var _ finance.ExpenseRepository = (*MockExpenseRepository)(nil)

// MockRecurringRuleRepository is a mock implementation of RecurringRuleRepository
type MockRecurringRuleRepository struct {
	mock.Mock
}

func (m *MockRecurringRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.RecurringRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.RecurringRule), args.Error(1)
}

func (m *MockRecurringRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.RecurringRule, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.RecurringRule), args.Error(1)
}

func (m *MockRecurringRuleRepository) FindActiveByDay(ctx context.Context, dayOfMonth int) ([]finance.RecurringRule, error) {
	args := m.Called(ctx, dayOfMonth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.RecurringRule), args.Error(1)
}

func (m *MockRecurringRuleRepository) ExistsByDescription(ctx context.Context, tenantID uuid.UUID, description string) (bool, error) {
	args := m.Called(ctx, tenantID, description)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecurringRuleRepository) Save(ctx context.Context, rule *finance.RecurringRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

var _ finance.RecurringRuleRepository = (*MockRecurringRuleRepository)(nil)

// MockTenantRepository is a mock implementation of directory.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *directory.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

var _ directory.TenantRepository = (*MockTenantRepository)(nil)

// MockResidentRepository is a mock implementation of directory.ResidentRepository
type MockResidentRepository struct {
	mock.Mock
}

func (m *MockResidentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*directory.Resident, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Resident), args.Error(1)
}

func (m *MockResidentRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]directory.Resident, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.Resident), args.Error(1)
}

func (m *MockResidentRepository) Save(ctx context.Context, resident *directory.Resident) error {
	args := m.Called(ctx, resident)
	return args.Error(0)
}

var _ directory.ResidentRepository = (*MockResidentRepository)(nil)

// MockObjectStorageService is a mock implementation of ObjectStorageService
type MockObjectStorageService struct {
	mock.Mock
}

func (m *MockObjectStorageService) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorageService) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorageService) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorageService) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

var _ ObjectStorageService = (*MockObjectStorageService)(nil)

// MockReceiptExtractionService is a mock implementation of ReceiptExtractionService
type MockReceiptExtractionService struct {
	mock.Mock
}

func (m *MockReceiptExtractionService) Extract(ctx context.Context, data []byte, contentType string) (finance.ExtractedReceipt, error) {
	args := m.Called(ctx, data, contentType)
	return args.Get(0).(finance.ExtractedReceipt), args.Error(1)
}

var _ ReceiptExtractionService = (*MockReceiptExtractionService)(nil)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var _ shared.EventPublisher = (*MockEventPublisher)(nil)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)

// ============================================================================
// Shared fixtures
// ============================================================================

func testTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func testResidentID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func testAdminID() uuid.UUID {
	return uuid.MustParse("99999999-9999-9999-9999-999999999999")
}

func createTestTenant() *directory.Tenant {
	tenant, _ := directory.NewTenant("Yildiz Sitesi Yonetimi", "YILDIZ SITE HESABI")
	tenant.ID = testTenantID()
	return tenant
}

func createTestResident(tenantID uuid.UUID) *directory.Resident {
	resident, _ := directory.NewResident(tenantID, "Ayse Demir", "ayse@example.com", "A-4", directory.ResidentRoleResident)
	resident.ID = testResidentID()
	return resident
}

func createTestDue(tenantID, residentID uuid.UUID, amount string) *finance.Due {
	due, _ := finance.NewDue(
		tenantID,
		residentID,
		moneyTRY(amount),
		"Eylül Aidatı",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	)
	due.ClearDomainEvents()
	return due
}

func moneyTRY(amount string) valueobject.Money {
	return valueobject.NewMoneyTRY(decimal.RequireFromString(amount))
}
