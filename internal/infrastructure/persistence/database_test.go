package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance backed by a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_WithTenant(t *testing.T) {
	t.Run("scopes queries to the tenant", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := "550e8400-e29b-41d4-a716-446655440000"

		type Due struct {
			ID       uint
			TenantID string
			Status   string
		}

		mock.ExpectQuery(`SELECT \* FROM "dues" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "status"}).
				AddRow(1, tenantID, "UNPAID"))

		var results []Due
		err := db.WithTenant(tenantID).Find(&results).Error
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, tenantID, results[0].TenantID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty tenant ID panics", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		assert.Panics(t, func() {
			db.WithTenant("")
		})
	})

	t.Run("composes with further clauses", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := "tenant-compose"

		type Resident struct {
			ID       uint
			TenantID string
			Active   bool
		}

		mock.ExpectQuery(`SELECT \* FROM "residents" WHERE tenant_id = \$1 AND active = \$2`).
			WithArgs(tenantID, true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "active"}).
				AddRow(1, tenantID, true))

		var results []Resident
		err := db.WithTenant(tenantID).Where("active = ?", true).Find(&results).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not modify the original DB", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		originalDB := db.DB
		scopedDB := db.WithTenant("tenant-1")

		assert.NotEqual(t, originalDB, scopedDB)
		assert.Equal(t, originalDB, db.DB)
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		type Item struct {
			ID   uint
			Name string
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "items"`).
			WithArgs("Asansör Bakımı").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&Item{Name: "Asansör Bakımı"}).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Ping(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	// GORM may ping during Open, so expect it first
	mock.ExpectPing()

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}

	mock.ExpectPing()
	assert.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}
