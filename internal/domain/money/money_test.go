package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		code   string
		opts   DisplayOptions
		want   string
	}{
		{"dollars", "10", "USD", DisplayOptions{}, "$10.00"},
		{"with currency", "10", "USD", DisplayOptions{WithCurrency: true}, "$10.00 USD"},
		{"canadian", "10", "CAD", DisplayOptions{WithCurrency: true}, "$10.00 CAD"},
		{"hide cents", "10", "USD", DisplayOptions{HideCents: true}, "$10"},
		{"symbol after", "10", "USD", DisplayOptions{SymbolAfter: true}, "10.00 $"},
		{"yen", "100", "JPY", DisplayOptions{}, "¥100"},
		{"yen thousands", "1000", "JPY", DisplayOptions{}, "¥1,000"},
		{"grouping", "1234567.891", "USD", DisplayOptions{}, "$1,234,567.89"},
		{"negative", "-5.5", "EUR", DisplayOptions{}, "-€5.50"},
		{"lower case code", "22.25", "usd", DisplayOptions{}, "$22.25"},
		{"unknown symbol", "3", "SEK", DisplayOptions{}, "SEK 3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatWith(decimal.RequireFromString(tt.amount), tt.code, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	code, err := ValidateCurrency("usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	_, err = ValidateCurrency("dollars")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestRound(t *testing.T) {
	assert.True(t, decimal.RequireFromString("10.01").Equal(Round(decimal.RequireFromString("10.005"), "USD")))
	assert.True(t, decimal.NewFromInt(101).Equal(Round(decimal.RequireFromString("100.5"), "JPY")))
	assert.Equal(t, int32(2), Scale("XXX-not-a-code"))
}

func TestSum(t *testing.T) {
	got := Sum(decimal.RequireFromString("1.10"), decimal.RequireFromString("2.20"), decimal.RequireFromString("-0.30"))
	assert.True(t, decimal.RequireFromString("3").Equal(got))
	assert.True(t, Sum().IsZero())
}
