package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), TRY)
		require.NoError(t, err)
		assert.Equal(t, TRY, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.50")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", TRY)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", TRY)
		assert.Error(t, err)
	})
}

func TestNewMoneyTRYFromString(t *testing.T) {
	m, err := NewMoneyTRYFromString("199.99")
	require.NoError(t, err)
	assert.Equal(t, TRY, m.Currency())
	assert.Equal(t, "199.99", m.StringFixed(2))
}

func TestZero(t *testing.T) {
	m := Zero(USD)
	assert.True(t, m.IsZero())
	assert.Equal(t, USD, m.Currency())

	assert.True(t, ZeroTRY().IsZero())
	assert.Equal(t, TRY, ZeroTRY().Currency())
}

func TestMoneySignPredicates(t *testing.T) {
	positive := NewMoneyTRY(decimal.NewFromInt(100))
	negative := positive.Negate()
	zero := ZeroTRY()

	assert.True(t, positive.IsPositive())
	assert.False(t, positive.IsNegative())

	assert.True(t, negative.IsNegative())
	assert.False(t, negative.IsPositive())

	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		m1, _ := NewMoneyTRYFromString("100.50")
		m2, _ := NewMoneyTRYFromString("50.25")
		result, err := m1.Add(m2)
		require.NoError(t, err)
		assert.Equal(t, "150.75", result.StringFixed(2))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1 := NewMoneyTRY(decimal.NewFromInt(100))
		m2, _ := NewMoney(decimal.NewFromInt(50), USD)
		_, err := m1.Add(m2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneySubtract(t *testing.T) {
	m1, _ := NewMoneyTRYFromString("100.00")
	m2, _ := NewMoneyTRYFromString("150.80")
	result, err := m1.Subtract(m2)
	require.NoError(t, err)
	assert.True(t, result.IsNegative())
	assert.Equal(t, "-50.80", result.StringFixed(2))

	m3, _ := NewMoney(decimal.NewFromInt(1), EUR)
	_, err = m1.Subtract(m3)
	assert.Error(t, err)
}

func TestMoneyNegateAndAbs(t *testing.T) {
	m, _ := NewMoneyTRYFromString("42.10")
	neg := m.Negate()
	assert.Equal(t, "-42.10", neg.StringFixed(2))
	assert.True(t, neg.Abs().Equals(m))

	// sum with its own reversal is exactly zero
	sum := m.MustAdd(neg)
	assert.True(t, sum.IsZero())
}

func TestMoneyComparisons(t *testing.T) {
	small, _ := NewMoneyTRYFromString("0.99")
	one, _ := NewMoneyTRYFromString("1.00")

	lt, err := small.LessThan(one)
	require.NoError(t, err)
	assert.True(t, lt)

	gte, err := one.GreaterThanOrEqual(one)
	require.NoError(t, err)
	assert.True(t, gte)

	other, _ := NewMoney(decimal.NewFromInt(1), GBP)
	_, err = one.LessThan(other)
	assert.Error(t, err)
}

func TestMoneyEquals(t *testing.T) {
	a, _ := NewMoneyTRYFromString("10.0")
	b, _ := NewMoneyTRYFromString("10.00")
	c, _ := NewMoney(decimal.NewFromInt(10), USD)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, _ := NewMoneyTRYFromString("150.80")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"150.8","currency":"TRY"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string amount with default currency", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("123.45"))
		assert.Equal(t, DefaultCurrency, m.Currency())
		assert.Equal(t, "123.45", m.StringFixed(2))
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(123))
	})
}
