package domain

import "regexp"

var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

// AccountNumber is an immutable 10-digit account identifier
type AccountNumber struct {
	value string
}

// NewAccountNumber validates value and wraps it. RE2's \d only matches ASCII digits.
func NewAccountNumber(value string) (AccountNumber, error) {
	if value == "" {
		return AccountNumber{}, NewConstructionError(CodeInvalidAccountNumber, "account number is required")
	}
	if !IsValidAccountNumber(value) {
		return AccountNumber{}, NewConstructionError(CodeInvalidAccountNumber, "account number must be exactly 10 digits, got %q", value)
	}
	return AccountNumber{value: value}, nil
}

// IsValidAccountNumber reports whether value has the account number format
func IsValidAccountNumber(value string) bool {
	return accountNumberPattern.MatchString(value)
}

// Value returns the canonical 10-digit string
func (a AccountNumber) Value() string {
	return a.value
}

// IsZero reports whether a is the zero value
func (a AccountNumber) IsZero() bool {
	return a.value == ""
}

// Equals compares the canonical values
func (a AccountNumber) Equals(other AccountNumber) bool {
	return a.value == other.value
}

func (a AccountNumber) String() string {
	return a.value
}

// Format groups the digits as DDDD-DDD-DDD
func (a AccountNumber) Format() string {
	if len(a.value) != 10 {
		return a.value
	}
	return a.value[:4] + "-" + a.value[4:7] + "-" + a.value[7:]
}
