package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
)

func TestGormDueRepository_ExistsForPeriod(t *testing.T) {
	tenantID := uuid.New()
	residentID := uuid.New()

	t.Run("found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormDueRepository(db.DB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "dues" WHERE tenant_id = \$1 AND resident_id = \$2 AND description = \$3 AND period = \$4`).
			WithArgs(tenantID, residentID, "Eylül Aidatı", "2026-09").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsForPeriod(context.Background(), tenantID, residentID, "Eylül Aidatı", "2026-09")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormDueRepository(db.DB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "dues"`).
			WithArgs(tenantID, residentID, "Eylül Aidatı", "2026-10").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsForPeriod(context.Background(), tenantID, residentID, "Eylül Aidatı", "2026-10")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormDueRepository_FindReceiptPending_OrdersByUploadTime(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormDueRepository(db.DB)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "dues" WHERE tenant_id = \$1 AND status = \$2 ORDER BY receipt_uploaded_at DESC`).
		WithArgs(tenantID, finance.DueStatusReceiptPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "status"}))

	dues, err := repo.FindReceiptPending(context.Background(), tenantID, finance.DueFilter{})
	require.NoError(t, err)
	assert.Empty(t, dues)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDueRepository_CountForTenant_StatusFilter(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormDueRepository(db.DB)
	tenantID := uuid.New()
	status := finance.DueStatusUnpaid

	mock.ExpectQuery(`SELECT count\(\*\) FROM "dues" WHERE tenant_id = \$1 AND status = \$2`).
		WithArgs(tenantID, status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForTenant(context.Background(), tenantID, finance.DueFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestGormDueRepository_FindByID_IgnoresTenant(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormDueRepository(db.DB)
	dueID := uuid.New()
	otherTenant := uuid.New()

	// No tenant_id in the WHERE clause: ownership is checked by the caller
	// so a foreign-tenant access can be rejected as forbidden, not as
	// not-found.
	mock.ExpectQuery(`SELECT \* FROM "dues" WHERE id = \$1 ORDER BY "dues"\."id" LIMIT \$2`).
		WithArgs(dueID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "resident_id", "amount", "description", "period", "status"}).
			AddRow(dueID, otherTenant, uuid.New(), "150.80", "Eylül Aidatı", "2026-09", "UNPAID"))

	due, err := repo.FindByID(context.Background(), dueID)
	require.NoError(t, err)
	assert.Equal(t, otherTenant, due.TenantID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDueRepository_FindByID_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormDueRepository(db.DB)
	dueID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "dues" WHERE id = \$1`).
		WithArgs(dueID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), dueID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
