package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

func TestNewLedgerEntry(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates entry with event", func(t *testing.T) {
		amount, _ := valueobject.NewMoneyTRYFromString("150.00")
		sourceID := uuid.New()
		residentID := uuid.New()

		e, err := NewLedgerEntry(tenantID, amount, "Aidat Ödemesi: Eylül", time.Now(), EntrySourceDuesPayment, &sourceID, &residentID)
		require.NoError(t, err)

		assert.True(t, e.IsIncome())
		assert.False(t, e.IsOutflow())
		assert.Equal(t, EntrySourceDuesPayment, e.Source)

		events := e.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "LedgerEntryRecorded", events[0].EventType())
	})

	t.Run("accepts negative amounts for outflows", func(t *testing.T) {
		amount, _ := valueobject.NewMoneyTRYFromString("-300.00")
		e, err := NewLedgerEntry(tenantID, amount, "Asansör bakımı", time.Now(), EntrySourceExpense, nil, nil)
		require.NoError(t, err)
		assert.True(t, e.IsOutflow())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, valueobject.ZeroTRY(), "noop", time.Now(), EntrySourceManual, nil, nil)
		assertDomainError(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects empty description", func(t *testing.T) {
		amount, _ := valueobject.NewMoneyTRYFromString("10.00")
		_, err := NewLedgerEntry(tenantID, amount, "", time.Now(), EntrySourceManual, nil, nil)
		assertDomainError(t, err, "INVALID_DESCRIPTION")
	})

	t.Run("rejects invalid source", func(t *testing.T) {
		amount, _ := valueobject.NewMoneyTRYFromString("10.00")
		_, err := NewLedgerEntry(tenantID, amount, "x", time.Now(), EntrySource("BOGUS"), nil, nil)
		assertDomainError(t, err, "INVALID_SOURCE")
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		amount, _ := valueobject.NewMoneyTRYFromString("10.00")
		_, err := NewLedgerEntry(uuid.Nil, amount, "x", time.Now(), EntrySourceManual, nil, nil)
		assertDomainError(t, err, "INVALID_TENANT")
	})

	t.Run("defaults entry date to now when zero", func(t *testing.T) {
		amount, _ := valueobject.NewMoneyTRYFromString("10.00")
		e, err := NewLedgerEntry(tenantID, amount, "x", time.Time{}, EntrySourceManual, nil, nil)
		require.NoError(t, err)
		assert.False(t, e.EntryDate.IsZero())
	})
}

func TestLedgerEntryReversal(t *testing.T) {
	tenantID := uuid.New()
	sourceID := uuid.New()
	amount, _ := valueobject.NewMoneyTRYFromString("150.00")

	original, err := NewLedgerEntry(tenantID, amount, "Aidat Ödemesi: Eylül", time.Now(), EntrySourceDuesPayment, &sourceID, nil)
	require.NoError(t, err)

	reversal, err := original.Reversal("Aidat Ödemesi İptali: Eylül")
	require.NoError(t, err)

	// the pair nets out to exactly zero
	sum := original.Amount.Add(reversal.Amount)
	assert.True(t, sum.IsZero())
	assert.Equal(t, original.Source, reversal.Source)
	assert.Equal(t, original.SourceID, reversal.SourceID)
	assert.NotEqual(t, original.ID, reversal.ID)

	_, err = original.Reversal("")
	assertDomainError(t, err, "INVALID_DESCRIPTION")
}
