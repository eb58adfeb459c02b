package domain

import (
	"strings"
	"time"
)

// Transfer is an immutable scheduled transfer. Updates produce a new instance.
type Transfer struct {
	id            string
	sourceAccount AccountNumber
	targetAccount AccountNumber
	amount        Money
	fee           Money
	scheduleDate  time.Time
	transferDate  time.Time
}

// TransferParams carries the already-built value objects of a transfer.
// ID is empty until the remote collaborator assigns one; ScheduleDate is optional.
type TransferParams struct {
	ID            string
	SourceAccount AccountNumber
	TargetAccount AccountNumber
	Amount        Money
	Fee           Money
	ScheduleDate  time.Time
	TransferDate  time.Time
}

// NewTransfer enforces the entity invariants and returns the transfer
func NewTransfer(p TransferParams) (*Transfer, error) {
	if p.SourceAccount.IsZero() || p.TargetAccount.IsZero() {
		return nil, NewConstructionError(CodeMissingField, "source and target accounts are required")
	}
	if p.SourceAccount.Equals(p.TargetAccount) {
		return nil, NewConstructionError(CodeSameAccount, "source and target accounts must be different")
	}
	if p.Amount.IsZero() {
		return nil, NewConstructionError(CodeMissingField, "transfer amount is required")
	}
	if p.Fee.IsZero() {
		return nil, NewConstructionError(CodeMissingField, "transfer fee is required")
	}
	if p.TransferDate.IsZero() {
		return nil, NewConstructionError(CodeMissingField, "transfer date is required")
	}

	t := &Transfer{
		id:            strings.TrimSpace(p.ID),
		sourceAccount: p.SourceAccount,
		targetAccount: p.TargetAccount,
		amount:        p.Amount,
		fee:           p.Fee,
		transferDate:  CivilDate(p.TransferDate),
	}

	if !p.ScheduleDate.IsZero() {
		t.scheduleDate = CivilDate(p.ScheduleDate)
		if t.transferDate.Before(t.scheduleDate) {
			return nil, NewConstructionError(CodeInvalidDate, "transfer date %s cannot be before schedule date %s",
				FormatDate(t.transferDate), FormatDate(t.scheduleDate))
		}
	}

	return t, nil
}

// NewScheduledTransfer builds a not-yet-persisted transfer from a validated request and its fee quote
func NewScheduledTransfer(req TransferRequest, quote FeeQuote, scheduleDate time.Time) (*Transfer, error) {
	source, err := NewAccountNumber(req.SourceAccount)
	if err != nil {
		return nil, err
	}
	target, err := NewAccountNumber(req.TargetAccount)
	if err != nil {
		return nil, err
	}
	amount, err := ParseMoney(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, err
	}
	fee, err := quote.Money()
	if err != nil {
		return nil, NewConstructionError(CodeInvalidAmount, "fee for amount %s rounds to zero", amount.String())
	}
	transferDate, err := ParseDate(req.TransferDate)
	if err != nil {
		return nil, NewConstructionError(CodeInvalidDate, "transfer date %q is not a valid date", req.TransferDate)
	}

	return NewTransfer(TransferParams{
		ID:            req.ID,
		SourceAccount: source,
		TargetAccount: target,
		Amount:        amount,
		Fee:           fee,
		ScheduleDate:  scheduleDate,
		TransferDate:  transferDate,
	})
}

// TransferFromResponse rehydrates a transfer from the collaborator's field bag.
// Every field is required; nothing is defaulted.
func TransferFromResponse(r TransferResponse) (*Transfer, error) {
	required := []struct{ name, value string }{
		{FieldID, r.ID},
		{FieldSourceAccount, r.SourceAccount},
		{FieldTargetAccount, r.TargetAccount},
		{FieldAmount, r.Amount},
		{"fee", r.Fee},
		{"scheduleDate", r.ScheduleDate},
		{FieldTransferDate, r.TransferDate},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, NewConstructionError(CodeMissingField, "response field %s is missing", f.name)
		}
	}

	source, err := NewAccountNumber(r.SourceAccount)
	if err != nil {
		return nil, err
	}
	target, err := NewAccountNumber(r.TargetAccount)
	if err != nil {
		return nil, err
	}
	amount, err := ParseMoney(r.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := ParseMoney(r.Fee)
	if err != nil {
		return nil, err
	}
	scheduleDate, err := ParseDate(r.ScheduleDate)
	if err != nil {
		return nil, NewConstructionError(CodeInvalidDate, "response scheduleDate %q is not a valid date", r.ScheduleDate)
	}
	transferDate, err := ParseDate(r.TransferDate)
	if err != nil {
		return nil, NewConstructionError(CodeInvalidDate, "response transferDate %q is not a valid date", r.TransferDate)
	}

	return NewTransfer(TransferParams{
		ID:            r.ID,
		SourceAccount: source,
		TargetAccount: target,
		Amount:        amount,
		Fee:           fee,
		ScheduleDate:  scheduleDate,
		TransferDate:  transferDate,
	})
}

func (t *Transfer) ID() string { return t.id }

func (t *Transfer) SourceAccount() AccountNumber { return t.sourceAccount }

func (t *Transfer) TargetAccount() AccountNumber { return t.targetAccount }

func (t *Transfer) Amount() Money { return t.amount }

func (t *Transfer) Fee() Money { return t.fee }

func (t *Transfer) ScheduleDate() time.Time { return t.scheduleDate }

func (t *Transfer) TransferDate() time.Time { return t.transferDate }

// IsPersisted reports whether the collaborator has assigned an identifier
func (t *Transfer) IsPersisted() bool { return t.id != "" }

// WithID returns a copy of t carrying the given identifier
func (t *Transfer) WithID(id string) *Transfer {
	c := *t
	c.id = strings.TrimSpace(id)
	return &c
}

// TotalAmount is amount plus fee
func (t *Transfer) TotalAmount() Money {
	return t.amount.Add(t.fee)
}

// DaysUntilTransfer is the ceiling of (transferDate - now) in days. transferDate is a
// midnight, so the ceiling equals the calendar-day difference for any time of day.
func (t *Transfer) DaysUntilTransfer(now time.Time) int {
	return DaysBetween(now, t.transferDate)
}

// Response renders t as the collaborator field bag
func (t *Transfer) Response() TransferResponse {
	return TransferResponse{
		ID:            t.id,
		SourceAccount: t.sourceAccount.Value(),
		TargetAccount: t.targetAccount.Value(),
		Amount:        t.amount.String(),
		Fee:           t.fee.String(),
		ScheduleDate:  FormatDate(t.scheduleDate),
		TransferDate:  FormatDate(t.transferDate),
	}
}

// TransferSummary is a display-ready rendering of a transfer
type TransferSummary struct {
	ID                string `json:"id"`
	From              string `json:"from"`
	To                string `json:"to"`
	Amount            string `json:"amount"`
	Fee               string `json:"fee"`
	Total             string `json:"total"`
	ScheduleDate      string `json:"scheduleDate"`
	TransferDate      string `json:"transferDate"`
	DaysUntilTransfer int    `json:"daysUntilTransfer"`
}

// Summary formats t for display as seen at now
func (t *Transfer) Summary(now time.Time) TransferSummary {
	s := TransferSummary{
		ID:                t.id,
		From:              t.sourceAccount.Format(),
		To:                t.targetAccount.Format(),
		Amount:            t.amount.Format(),
		Fee:               t.fee.Format(),
		Total:             t.TotalAmount().Format(),
		TransferDate:      t.transferDate.Format(displayDateLayout),
		DaysUntilTransfer: t.DaysUntilTransfer(now),
	}
	if !t.scheduleDate.IsZero() {
		s.ScheduleDate = t.scheduleDate.Format(displayDateLayout)
	}
	return s
}
