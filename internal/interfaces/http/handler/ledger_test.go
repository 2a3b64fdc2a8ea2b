package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/infrastructure/auth"
	"github.com/sitefund/backend/internal/infrastructure/config"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

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

type ledgerFixture struct {
	engine     *gin.Engine
	ledgerRepo *MockLedgerEntryRepository
	jwtService *auth.JWTService
	tenantID   uuid.UUID
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledgerRepo := new(MockLedgerEntryRepository)
	ledgerService := appfinance.NewLedgerService(ledgerRepo, nil, nil)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-characters-long",
		AccessTokenExpiration: time.Hour,
		Issuer:                "sitefund-test",
	})

	h := NewLedgerHandler(ledgerService, nil)

	engine := gin.New()
	api := engine.Group("/api/v1", middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
	}))
	h.RegisterRoutes(api)

	return &ledgerFixture{
		engine:     engine,
		ledgerRepo: ledgerRepo,
		jwtService: jwtService,
		tenantID:   uuid.New(),
	}
}

func (f *ledgerFixture) do(t *testing.T, req *http.Request, userID uuid.UUID, role string) *httptest.ResponseRecorder {
	t.Helper()
	issued, err := f.jwtService.GenerateToken(auth.GenerateTokenInput{
		TenantID: f.tenantID,
		UserID:   userID,
		Name:     "Test Kullanıcı",
		Role:     role,
	})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestLedgerHandler_List_ResidentCanRead(t *testing.T) {
	f := newLedgerFixture(t)

	f.ledgerRepo.On("FindAllForTenant", mock.Anything, f.tenantID, mock.AnythingOfType("finance.LedgerEntryFilter")).
		Return([]finance.LedgerEntry{}, nil)
	f.ledgerRepo.On("CountForTenant", mock.Anything, f.tenantID, mock.AnythingOfType("finance.LedgerEntryFilter")).
		Return(int64(0), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	w := f.do(t, req, uuid.New(), auth.RoleResident)

	assert.Equal(t, http.StatusOK, w.Code)
	f.ledgerRepo.AssertExpectations(t)
}

func TestLedgerHandler_Balance_ResidentCanRead(t *testing.T) {
	f := newLedgerFixture(t)

	f.ledgerRepo.On("SumForTenant", mock.Anything, f.tenantID, mock.AnythingOfType("finance.LedgerEntryFilter")).
		Return(decimal.RequireFromString("1250.75"), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/balance", nil)
	w := f.do(t, req, uuid.New(), auth.RoleResident)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1250.75")
}

func TestLedgerHandler_CreateManualEntry_ResidentForbidden(t *testing.T) {
	f := newLedgerFixture(t)

	body, _ := json.Marshal(gin.H{
		"amount":      "200.00",
		"kind":        "INCOME",
		"description": "Bağış",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(t, req, uuid.New(), auth.RoleResident)

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedgerHandler_CreateManualEntry_Admin(t *testing.T) {
	f := newLedgerFixture(t)

	f.ledgerRepo.On("Append", mock.Anything, mock.AnythingOfType("*finance.LedgerEntry")).Return(nil)

	body, _ := json.Marshal(gin.H{
		"amount":      "200.00",
		"kind":        "EXPENSE",
		"description": "Bahçe bakımı",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(t, req, uuid.New(), auth.RoleAdmin)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.ledgerRepo.AssertExpectations(t)
}
