package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyDecimalPlaces is the precision every Money amount is rounded to
const MoneyDecimalPlaces = 2

// MaxTransferAmount is the largest amount a transfer request may carry
var MaxTransferAmount = decimal.RequireFromString("999999999.99")

// Bounds on amount text accepted by parseAmount
const (
	maxAmountTextLength    = 40
	maxAmountIntegerDigits = 15
	maxAmountScale         = 16
)

var (
	errAmountNotNumeric = errors.New("amount is not numeric")
	errAmountOutOfRange = errors.New("amount is out of range")
)

var brazilianPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Money is an immutable, strictly positive monetary amount in cents precision.
// Amounts are rounded half away from zero at construction, so 0.005 becomes 0.01.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount, rejecting values that are not
// positive once rounded to cents
func NewMoney(amount decimal.Decimal) (Money, error) {
	rounded := amount.Round(MoneyDecimalPlaces)
	if !rounded.IsPositive() {
		return Money{}, NewConstructionError(CodeInvalidAmount, "monetary amount must be positive, got %s", amount.String())
	}
	return Money{amount: rounded}, nil
}

// MoneyFromFloat creates Money from a float64, rejecting NaN and infinities
func MoneyFromFloat(amount float64) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, NewConstructionError(CodeInvalidAmount, "monetary amount must be finite")
	}
	return NewMoney(decimal.NewFromFloat(amount))
}

// ParseMoney creates Money from its textual representation
func ParseMoney(amount string) (Money, error) {
	if amount == "" {
		return Money{}, NewConstructionError(CodeInvalidAmount, "monetary amount is required")
	}
	d, err := parseAmount(amount)
	if errors.Is(err, errAmountOutOfRange) {
		return Money{}, NewConstructionError(CodeInvalidAmount, "monetary amount is out of range")
	}
	if err != nil {
		return Money{}, NewConstructionError(CodeInvalidAmount, "monetary amount must be numeric, got %q", amount)
	}
	return NewMoney(d)
}

// parseAmount parses decimal text and bounds its magnitude and scale before any
// arithmetic runs. Rescaling a value such as 1e30000000 allocates an integer with
// as many digits as the exponent, so the exponent is checked on the parsed form.
func parseAmount(value string) (decimal.Decimal, error) {
	if len(value) > maxAmountTextLength {
		return decimal.Zero, errAmountOutOfRange
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errAmountNotNumeric
	}

	exp := int64(d.Exponent())
	switch {
	case exp < -maxAmountScale, exp > maxAmountIntegerDigits:
		return decimal.Zero, errAmountOutOfRange
	case !d.IsZero() && int64(d.NumDigits())+exp > maxAmountIntegerDigits:
		return decimal.Zero, errAmountOutOfRange
	}
	return d, nil
}

// Amount returns the rounded decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero reports whether m is the zero value, i.e. was never constructed
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns the sum of both amounts. The sum of two positive amounts is positive.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount).Round(MoneyDecimalPlaces)}
}

// Equals compares the rounded amounts
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders the amount with exactly two decimals, e.g. "1000.50"
func (m Money) String() string {
	return m.amount.StringFixed(MoneyDecimalPlaces)
}

// Format renders the amount as Brazilian currency, e.g. "R$ 1.000,50"
func (m Money) Format() string {
	return FormatBRL(m.amount)
}

// FormatBRL renders any decimal as Brazilian currency with cents precision
func FormatBRL(amount decimal.Decimal) string {
	return brazilianPrinter.Sprintf("R$ %v", number.Decimal(amount.Round(MoneyDecimalPlaces).InexactFloat64(), number.Scale(MoneyDecimalPlaces)))
}
