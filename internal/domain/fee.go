package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeTier is a closed day-count range with a fixed fee and a percentage of the amount
type FeeTier struct {
	MinDays  int
	MaxDays  int
	FixedFee decimal.Decimal
	Rate     decimal.Decimal // fraction of the amount, 0.025 = 2.5%
}

// Applies reports whether days falls inside the tier's closed range
func (t FeeTier) Applies(days int) bool {
	return days >= t.MinDays && days <= t.MaxDays
}

// Fee computes fixed + amount*rate rounded to cents
func (t FeeTier) Fee(amount decimal.Decimal) decimal.Decimal {
	return t.FixedFee.Add(amount.Mul(t.Rate)).Round(MoneyDecimalPlaces)
}

// Describe renders the tier for display, e.g. "Same day: R$ 3.00 + 2.5%"
func (t FeeTier) Describe() string {
	label := fmt.Sprintf("%d-%d days", t.MinDays, t.MaxDays)
	if t.MinDays == 0 && t.MaxDays == 0 {
		label = "Same day"
	}

	hasFixed := t.FixedFee.IsPositive()
	hasRate := t.Rate.IsPositive()
	percent := t.Rate.Mul(decimal.NewFromInt(100)).String() + "%"

	switch {
	case hasFixed && hasRate:
		return fmt.Sprintf("%s: R$ %s + %s", label, t.FixedFee.StringFixed(2), percent)
	case hasFixed:
		return fmt.Sprintf("%s: R$ %s fixed", label, t.FixedFee.StringFixed(2))
	case hasRate:
		return fmt.Sprintf("%s: %s", label, percent)
	default:
		return fmt.Sprintf("%s: free", label)
	}
}

// DefaultFeeTiers is the fee table applied to scheduled transfers
var DefaultFeeTiers = []FeeTier{
	{MinDays: 0, MaxDays: 0, FixedFee: decimal.RequireFromString("3.00"), Rate: decimal.RequireFromString("0.025")},
	{MinDays: 1, MaxDays: 10, FixedFee: decimal.RequireFromString("12.00"), Rate: decimal.Zero},
	{MinDays: 11, MaxDays: 20, FixedFee: decimal.Zero, Rate: decimal.RequireFromString("0.082")},
	{MinDays: 21, MaxDays: 30, FixedFee: decimal.Zero, Rate: decimal.RequireFromString("0.069")},
	{MinDays: 31, MaxDays: 40, FixedFee: decimal.Zero, Rate: decimal.RequireFromString("0.047")},
	{MinDays: 41, MaxDays: 50, FixedFee: decimal.Zero, Rate: decimal.RequireFromString("0.017")},
}

// DefaultFeeEngine evaluates DefaultFeeTiers
var DefaultFeeEngine = MustNewFeeEngine(DefaultFeeTiers)

// FeeQuote is the result of a fee computation
type FeeQuote struct {
	Days int
	Tier FeeTier
	Fee  decimal.Decimal // rounded to cents, may be zero for tiny amounts
}

// Money returns the fee as Money. A fee that rounds to zero is not representable.
func (q FeeQuote) Money() (Money, error) {
	return NewMoney(q.Fee)
}

// FeeEngine selects the first tier matching the lead time and applies it.
// It holds no mutable state and is safe for concurrent use.
type FeeEngine struct {
	tiers []FeeTier
}

// NewFeeEngine validates that tiers are ascending, start at day 0 and leave no gaps or overlaps
func NewFeeEngine(tiers []FeeTier) (*FeeEngine, error) {
	if len(tiers) == 0 {
		return nil, errors.New("fee engine requires at least one tier")
	}
	if tiers[0].MinDays != 0 {
		return nil, fmt.Errorf("first fee tier must start at day 0, starts at %d", tiers[0].MinDays)
	}

	for i, tier := range tiers {
		if tier.MinDays > tier.MaxDays {
			return nil, fmt.Errorf("fee tier %d has an empty range %d-%d", i, tier.MinDays, tier.MaxDays)
		}
		if tier.FixedFee.IsNegative() || tier.Rate.IsNegative() {
			return nil, fmt.Errorf("fee tier %d has a negative fee", i)
		}
		if i > 0 && tier.MinDays != tiers[i-1].MaxDays+1 {
			return nil, fmt.Errorf("fee tier %d starts at %d, expected %d", i, tier.MinDays, tiers[i-1].MaxDays+1)
		}
	}

	copied := make([]FeeTier, len(tiers))
	copy(copied, tiers)
	return &FeeEngine{tiers: copied}, nil
}

// MustNewFeeEngine is NewFeeEngine that panics on an invalid table
func MustNewFeeEngine(tiers []FeeTier) *FeeEngine {
	engine, err := NewFeeEngine(tiers)
	if err != nil {
		panic(err)
	}
	return engine
}

// Tiers returns a copy of the engine's tier table
func (e *FeeEngine) Tiers() []FeeTier {
	copied := make([]FeeTier, len(e.tiers))
	copy(copied, e.tiers)
	return copied
}

// MaxDays is the furthest lead time any tier covers
func (e *FeeEngine) MaxDays() int {
	return e.tiers[len(e.tiers)-1].MaxDays
}

// TierFor returns the tier covering days, failing with ErrPastDate or ErrNoApplicableTier
func (e *FeeEngine) TierFor(days int) (FeeTier, error) {
	if days < 0 {
		return FeeTier{}, NewBusinessRuleError(CodePastDate,
			fmt.Sprintf("transfer date is %d day(s) in the past, pick today or a later date", -days), nil)
	}
	for _, tier := range e.tiers {
		if tier.Applies(days) {
			return tier, nil
		}
	}
	return FeeTier{}, NewBusinessRuleError(CodeNoApplicableTier,
		fmt.Sprintf("no fee applicable %d days ahead, pick a date at most %d days from today", days, e.MaxDays()), nil)
}

// ComputeFee computes the fee for amount scheduled on scheduledDate as seen on today.
// Both dates are reduced to calendar dates first, so same-day transfers are always 0 days.
func (e *FeeEngine) ComputeFee(amount Money, scheduledDate, today time.Time) (FeeQuote, error) {
	days := DaysBetween(today, scheduledDate)
	tier, err := e.TierFor(days)
	if err != nil {
		return FeeQuote{}, err
	}
	return FeeQuote{Days: days, Tier: tier, Fee: tier.Fee(amount.Amount())}, nil
}

// DescribeDays renders the tier applicable to days, or why none applies
func (e *FeeEngine) DescribeDays(days int) string {
	tier, err := e.TierFor(days)
	if err != nil {
		if days < 0 {
			return "Not applicable (past date)"
		}
		return fmt.Sprintf("Not applicable (>%d days)", e.MaxDays())
	}
	return tier.Describe()
}

// ComputeFee runs DefaultFeeEngine
func ComputeFee(amount Money, scheduledDate, today time.Time) (FeeQuote, error) {
	return DefaultFeeEngine.ComputeFee(amount, scheduledDate, today)
}
