package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a domain error so callers can branch on it
type ErrorKind string

const (
	// KindConstruction is raised when a value object or entity invariant is violated
	KindConstruction ErrorKind = "CONSTRUCTION"
	// KindValidation is raised before any remote call and carries a field->reason mapping
	KindValidation ErrorKind = "VALIDATION"
	// KindBusinessRule is raised when a semantically valid request is rejected
	KindBusinessRule ErrorKind = "BUSINESS_RULE"
)

// Stable error codes
const (
	CodeInvalidAmount        = "MONEY.INVALID_AMOUNT"
	CodeInvalidAccountNumber = "ACCOUNT.INVALID_NUMBER"
	CodeSameAccount          = "TRANSFER.SAME_ACCOUNT"
	CodeMissingField         = "TRANSFER.MISSING_FIELD"
	CodeInvalidDate          = "TRANSFER.INVALID_DATE"
	CodeInvalidRequest       = "TRANSFER.INVALID_REQUEST"
	CodeTransferNotFound     = "TRANSFER.NOT_FOUND"
	CodeRemoteRejected       = "TRANSFER.REMOTE_REJECTED"
	CodeRemoteFailure        = "TRANSFER.REMOTE_FAILURE"
	CodePastDate             = "FEE.PAST_DATE"
	CodeNoApplicableTier     = "FEE.NO_APPLICABLE_TIER"
)

// Error is the tagged domain error. Kind drives handling, Code identifies the rule,
// Fields is set for validation errors and Cause keeps the original failure.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Unwrap exposes the original failure
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two domain errors by code, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && e.Code == t.Code
}

// Sentinels for errors.Is comparisons
var (
	ErrInvalidAmount        = &Error{Kind: KindConstruction, Code: CodeInvalidAmount, Message: "invalid monetary amount"}
	ErrInvalidAccountNumber = &Error{Kind: KindConstruction, Code: CodeInvalidAccountNumber, Message: "account number must be exactly 10 digits"}
	ErrSameAccount          = &Error{Kind: KindConstruction, Code: CodeSameAccount, Message: "source and target accounts must be different"}
	ErrMissingField         = &Error{Kind: KindConstruction, Code: CodeMissingField, Message: "required transfer field is missing"}
	ErrInvalidDate          = &Error{Kind: KindConstruction, Code: CodeInvalidDate, Message: "invalid transfer date"}
	ErrInvalidRequest       = &Error{Kind: KindValidation, Code: CodeInvalidRequest, Message: "invalid transfer request"}
	ErrTransferNotFound     = &Error{Kind: KindBusinessRule, Code: CodeTransferNotFound, Message: "transfer not found"}
	ErrPastDate             = &Error{Kind: KindBusinessRule, Code: CodePastDate, Message: "transfer date is in the past"}
	ErrNoApplicableTier     = &Error{Kind: KindBusinessRule, Code: CodeNoApplicableTier, Message: "no fee applicable for the transfer date"}
)

// NewConstructionError builds a construction error with the given code
func NewConstructionError(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConstruction, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError builds a validation error carrying every violated field
func NewValidationError(fields map[string]string) *Error {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Error{Kind: KindValidation, Code: CodeInvalidRequest, Message: "invalid transfer request", Fields: copied}
}

// NewBusinessRuleError builds a business rule error that keeps the original failure as cause
func NewBusinessRuleError(code, message string, cause error) *Error {
	return &Error{Kind: KindBusinessRule, Code: code, Message: message, Cause: cause}
}

// NewTransferNotFoundError reports an identifier that does not resolve to a transfer
func NewTransferNotFoundError(id string) *Error {
	return &Error{Kind: KindBusinessRule, Code: CodeTransferNotFound, Message: fmt.Sprintf("transfer %s not found", id)}
}

// KindOf returns the kind of the first domain error in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// FieldErrors returns the field->reason mapping of a validation error, or nil
func FieldErrors(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindValidation {
		return de.Fields
	}
	return nil
}

// RemoteStatus is the category a collaborator reports for a failed call
type RemoteStatus string

const (
	RemoteBadRequest  RemoteStatus = "BAD_REQUEST"
	RemoteNotFound    RemoteStatus = "NOT_FOUND"
	RemoteConflict    RemoteStatus = "CONFLICT"
	RemoteUnavailable RemoteStatus = "UNAVAILABLE"
	RemoteInternal    RemoteStatus = "INTERNAL"
)

// RemoteError is returned by TransferRepository implementations when the remote
// collaborator rejects or fails a call. Code holds the collaborator's domain
// error code when it sent one.
type RemoteError struct {
	Status  RemoteStatus
	Code    string
	Message string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %s", strings.ToLower(string(e.Status)), e.Message)
}

// RemoteStatusOf returns the remote status in err's chain and whether one was found
func RemoteStatusOf(err error) (RemoteStatus, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status, true
	}
	return "", false
}
