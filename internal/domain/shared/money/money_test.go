package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	m, err := FromString("100.00", "etb")
	require.NoError(t, err)
	assert.Equal(t, "ETB", m.Currency)
	assert.Equal(t, "100.00 ETB", m.String())

	_, err = FromString("not-a-number", "ETB")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = FromString("10", "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestMulInt(t *testing.T) {
	nightly := Must("100.00", "ETB")
	total := nightly.MulInt(3)
	assert.Equal(t, "300.00 ETB", total.String())
	assert.True(t, total.IsPositive())
}

func TestArithmeticRequiresSameCurrency(t *testing.T) {
	a := Must("10.00", "ETB")
	b := Must("5.00", "USD")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = a.Sub(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := a.Add(Must("2.50", "ETB"))
	require.NoError(t, err)
	assert.Equal(t, "12.50 ETB", sum.String())
}

func TestDecimalPrecision(t *testing.T) {
	nightly := Must("33.33", "ETB")
	total := nightly.MulInt(3)
	assert.Equal(t, "99.99 ETB", total.String())
	assert.True(t, Must("99.99", "ETB").Equal(total))
}
