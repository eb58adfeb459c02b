package domain

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feeToday = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

func mustMoney(t *testing.T, amount string) Money {
	t.Helper()
	m, err := ParseMoney(amount)
	require.NoError(t, err)
	return m
}

func TestComputeFee_TierTable(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		days   int
		want   string
	}{
		{name: "same day", amount: "100", days: 0, want: "5.50"},
		{name: "one day", amount: "100", days: 1, want: "12.00"},
		{name: "three days", amount: "100", days: 3, want: "12.00"},
		{name: "ten days", amount: "5000", days: 10, want: "12.00"},
		{name: "eleven days", amount: "1000", days: 11, want: "82.00"},
		{name: "fifteen days", amount: "1000", days: 15, want: "82.00"},
		{name: "twenty days", amount: "100", days: 20, want: "8.20"},
		{name: "twenty one days", amount: "1000", days: 21, want: "69.00"},
		{name: "thirty days", amount: "1000", days: 30, want: "69.00"},
		{name: "thirty one days", amount: "1000", days: 31, want: "47.00"},
		{name: "forty days", amount: "1000", days: 40, want: "47.00"},
		{name: "forty one days", amount: "1000", days: 41, want: "17.00"},
		{name: "fifty days", amount: "1000", days: 50, want: "17.00"},
		{name: "rounds to cents", amount: "33.33", days: 15, want: "2.73"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeFee(mustMoney(t, tt.amount), feeToday.AddDate(0, 0, tt.days), feeToday)
			require.NoError(t, err)
			assert.Equal(t, tt.days, quote.Days)
			assert.Equal(t, tt.want, quote.Fee.StringFixed(2))
		})
	}
}

func TestComputeFee_OutsideHorizon(t *testing.T) {
	amount := mustMoney(t, "100")

	for _, days := range []int{-1, -2, -30} {
		_, err := ComputeFee(amount, feeToday.AddDate(0, 0, days), feeToday)
		assert.ErrorIs(t, err, ErrPastDate, "days=%d", days)
		assert.NotErrorIs(t, err, ErrNoApplicableTier)
		assert.Equal(t, KindBusinessRule, KindOf(err))
	}

	for _, days := range []int{51, 52, 365} {
		_, err := ComputeFee(amount, feeToday.AddDate(0, 0, days), feeToday)
		assert.ErrorIs(t, err, ErrNoApplicableTier, "days=%d", days)
		assert.NotErrorIs(t, err, ErrPastDate)
	}
}

func TestComputeFee_IgnoresTimeOfDay(t *testing.T) {
	amount := mustMoney(t, "100")
	lateToday := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)
	earlyToday := time.Date(2026, 10, 15, 0, 1, 0, 0, time.UTC)

	quote, err := ComputeFee(amount, earlyToday, lateToday)
	require.NoError(t, err)
	assert.Equal(t, 0, quote.Days)

	tomorrowMorning := time.Date(2026, 10, 16, 0, 0, 1, 0, time.UTC)
	quote, err = ComputeFee(amount, tomorrowMorning, lateToday)
	require.NoError(t, err)
	assert.Equal(t, 1, quote.Days)
}

func TestComputeFee_AcrossDaylightSavingChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database not available")
	}
	// DST ends on 2026-11-01 in New York
	today := time.Date(2026, 10, 25, 0, 0, 0, 0, loc)
	scheduled := time.Date(2026, 11, 4, 0, 0, 0, 0, loc)

	quote, err := ComputeFee(mustMoney(t, "100"), scheduled, today)
	require.NoError(t, err)
	assert.Equal(t, 10, quote.Days)
	assert.Equal(t, "12.00", quote.Fee.StringFixed(2))
}

func TestComputeFee_MatchesTableForRandomAmounts(t *testing.T) {
	faker := gofakeit.New(20261015)

	expected := func(amount decimal.Decimal, days int) decimal.Decimal {
		var fixed, rate string
		switch {
		case days == 0:
			fixed, rate = "3.00", "0.025"
		case days <= 10:
			fixed, rate = "12.00", "0"
		case days <= 20:
			fixed, rate = "0", "0.082"
		case days <= 30:
			fixed, rate = "0", "0.069"
		case days <= 40:
			fixed, rate = "0", "0.047"
		default:
			fixed, rate = "0", "0.017"
		}
		return decimal.RequireFromString(fixed).Add(amount.Mul(decimal.RequireFromString(rate))).Round(2)
	}

	for i := 0; i < 200; i++ {
		amount, err := NewMoney(decimal.NewFromFloat(faker.Price(1, 1000000)))
		require.NoError(t, err)
		days := faker.IntRange(0, 50)

		quote, err := ComputeFee(amount, feeToday.AddDate(0, 0, days), feeToday)
		require.NoError(t, err)
		assert.True(t, expected(amount.Amount(), days).Equal(quote.Fee),
			"amount=%s days=%d got=%s", amount, days, quote.Fee)

		again, err := ComputeFee(amount, feeToday.AddDate(0, 0, days), feeToday)
		require.NoError(t, err)
		assert.Equal(t, quote, again)
	}
}

func TestNewFeeEngine_RejectsBrokenTables(t *testing.T) {
	tier := func(min, max int) FeeTier {
		return FeeTier{MinDays: min, MaxDays: max, FixedFee: decimal.Zero, Rate: decimal.RequireFromString("0.01")}
	}

	tests := []struct {
		name  string
		tiers []FeeTier
	}{
		{name: "empty", tiers: nil},
		{name: "does not start at zero", tiers: []FeeTier{tier(1, 10)}},
		{name: "gap", tiers: []FeeTier{tier(0, 0), tier(2, 10)}},
		{name: "overlap", tiers: []FeeTier{tier(0, 5), tier(5, 10)}},
		{name: "empty range", tiers: []FeeTier{tier(0, 0), tier(3, 1)}},
		{name: "negative fee", tiers: []FeeTier{{MinDays: 0, MaxDays: 0, FixedFee: decimal.NewFromInt(-1), Rate: decimal.Zero}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeeEngine(tt.tiers)
			assert.Error(t, err)
		})
	}

	engine, err := NewFeeEngine(DefaultFeeTiers)
	require.NoError(t, err)
	assert.Equal(t, 50, engine.MaxDays())
	assert.Len(t, engine.Tiers(), 6)
}

func TestFeeTier_Describe(t *testing.T) {
	want := []string{
		"Same day: R$ 3.00 + 2.5%",
		"1-10 days: R$ 12.00 fixed",
		"11-20 days: 8.2%",
		"21-30 days: 6.9%",
		"31-40 days: 4.7%",
		"41-50 days: 1.7%",
	}
	for i, tier := range DefaultFeeTiers {
		assert.Equal(t, want[i], tier.Describe())
	}

	assert.Equal(t, "Not applicable (>50 days)", DefaultFeeEngine.DescribeDays(51))
	assert.Equal(t, "Not applicable (past date)", DefaultFeeEngine.DescribeDays(-1))
	assert.Equal(t, "11-20 days: 8.2%", DefaultFeeEngine.DescribeDays(15))
}

func TestFeeQuote_MoneyRejectsZeroFee(t *testing.T) {
	quote, err := ComputeFee(mustMoney(t, "0.10"), feeToday.AddDate(0, 0, 45), feeToday)
	require.NoError(t, err)
	assert.True(t, quote.Fee.IsZero())

	_, err = quote.Money()
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
