package domain

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field names used as keys in validation results
const (
	FieldID            = "id"
	FieldSourceAccount = "sourceAccount"
	FieldTargetAccount = "targetAccount"
	FieldAmount        = "amount"
	FieldTransferDate  = "transferDate"
	FieldAccountNumber = "accountNumber"
)

var fieldLabels = map[string]string{
	FieldID:            "transfer id",
	FieldSourceAccount: "source account",
	FieldTargetAccount: "target account",
	FieldAmount:        "amount",
	FieldTransferDate:  "transfer date",
	FieldAccountNumber: "account number",
}

var minTransferAmount = decimal.RequireFromString("0.01")

// ValidationResult holds every violated field of a request
type ValidationResult struct {
	Errors map[string]string
}

// Valid reports whether no rule was violated
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ErrorCount is the number of violated fields
func (r ValidationResult) ErrorCount() int {
	return len(r.Errors)
}

// Err returns a validation error carrying all field errors, or nil when valid
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return NewValidationError(r.Errors)
}

// TransferRules checks transfer requests before they are scheduled or updated.
// Every field is checked and every violation is reported in a single pass.
type TransferRules struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewTransferRules creates the rule set. now supplies "today"; nil means time.Now.
func NewTransferRules(now func() time.Time) *TransferRules {
	if now == nil {
		now = time.Now
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("account_number", func(fl validator.FieldLevel) bool {
		return IsValidAccountNumber(fl.Field().String())
	})

	return &TransferRules{validate: v, now: now}
}

// Validate applies all request rules
func (r *TransferRules) Validate(req TransferRequest) ValidationResult {
	errs := make(map[string]string)

	if err := r.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			errs["request"] = err.Error()
			return ValidationResult{Errors: errs}
		}
		for _, fe := range fieldErrs {
			errs[fe.Field()] = fieldReason(fe.Field(), fe.Tag())
		}
	}

	if _, bad := errs[FieldTargetAccount]; !bad && req.SourceAccount == req.TargetAccount {
		errs[FieldTargetAccount] = "source and target accounts must be different"
	}

	if _, bad := errs[FieldAmount]; !bad {
		if reason := amountReason(req.Amount); reason != "" {
			errs[FieldAmount] = reason
		}
	}

	if _, bad := errs[FieldTransferDate]; !bad {
		if reason := r.transferDateReason(req.TransferDate); reason != "" {
			errs[FieldTransferDate] = reason
		}
	}

	return ValidationResult{Errors: errs}
}

// ValidateForUpdate applies all request rules and also requires an identifier
func (r *TransferRules) ValidateForUpdate(req TransferRequest) ValidationResult {
	result := r.Validate(req)
	if strings.TrimSpace(req.ID) == "" {
		result.Errors[FieldID] = "transfer id is required for update"
	}
	return result
}

func (r *TransferRules) transferDateReason(value string) string {
	date, err := ParseDate(value)
	if err != nil {
		return "transfer date must be a valid date (YYYY-MM-DD)"
	}
	if DaysBetween(r.now(), date) < 0 {
		return "transfer date must be today or a future date"
	}
	return ""
}

func amountReason(value string) string {
	amount, err := parseAmount(strings.TrimSpace(value))
	if errors.Is(err, errAmountOutOfRange) {
		return "amount must be between R$ 0,01 and R$ 999.999.999,99"
	}
	if err != nil {
		return "amount must be a valid number"
	}
	switch {
	case !amount.IsPositive():
		return "amount must be greater than zero"
	case amount.LessThan(minTransferAmount):
		return "minimum amount is R$ 0,01"
	case !amount.Equal(amount.Round(MoneyDecimalPlaces)):
		return "amount must have at most 2 decimal places"
	case amount.GreaterThan(MaxTransferAmount):
		return "maximum amount is R$ 999.999.999,99"
	}
	return ""
}

func fieldReason(field, tag string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}
	switch tag {
	case "required":
		return label + " is required"
	case "account_number":
		return label + " must be exactly 10 digits"
	default:
		return label + " is invalid"
	}
}

// ValidateAccountNumber checks only the account number format, for live input feedback
func ValidateAccountNumber(value string) error {
	switch {
	case value == "":
		return NewValidationError(map[string]string{FieldAccountNumber: fieldReason(FieldAccountNumber, "required")})
	case !IsValidAccountNumber(value):
		return NewValidationError(map[string]string{FieldAccountNumber: fieldReason(FieldAccountNumber, "account_number")})
	}
	return nil
}
