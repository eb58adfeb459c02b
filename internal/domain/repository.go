package domain

import (
	"context"
)

// TransferRequest is the raw field bag a caller submits to schedule or update a transfer.
// Amount and TransferDate are kept as text so that parsing is part of validation.
type TransferRequest struct {
	ID            string `json:"id"`
	SourceAccount string `json:"sourceAccount" validate:"required,account_number"`
	TargetAccount string `json:"targetAccount" validate:"required,account_number"`
	Amount        string `json:"amount" validate:"required"`
	TransferDate  string `json:"transferDate" validate:"required"`
}

// TransferResponse is the field bag returned by the remote collaborator.
// Amount and Fee are decimal strings, dates use DateLayout.
type TransferResponse struct {
	ID            string `json:"id"`
	SourceAccount string `json:"sourceAccount"`
	TargetAccount string `json:"targetAccount"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	ScheduleDate  string `json:"scheduleDate"`
	TransferDate  string `json:"transferDate"`
}

// TransferRepository is the remote collaborator that owns scheduled transfers.
// Failures reported by the remote side are returned as *RemoteError.
type TransferRepository interface {
	// ScheduleTransfer asks the collaborator to schedule a new transfer
	ScheduleTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)

	// GetAllTransfers lists every scheduled transfer
	GetAllTransfers(ctx context.Context) ([]TransferResponse, error)

	// GetTransferByID fetches a single transfer
	GetTransferByID(ctx context.Context, id string) (*TransferResponse, error)

	// UpdateTransfer replaces the transfer identified by req.ID
	UpdateTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)

	// DeleteTransfer removes a transfer
	DeleteTransfer(ctx context.Context, id string) error

	// ClearAllTransfers removes every transfer
	ClearAllTransfers(ctx context.Context) error
}

// TransferStore persists transfers on the authoritative side.
// Lookups of unknown identifiers fail with ErrTransferNotFound.
type TransferStore interface {
	// Save inserts t or replaces the stored transfer with the same ID
	Save(ctx context.Context, t *Transfer) error

	// FindByID retrieves a transfer by its ID
	FindByID(ctx context.Context, id string) (*Transfer, error)

	// FindAll retrieves every transfer ordered by transfer date
	FindAll(ctx context.Context) ([]*Transfer, error)

	// Delete removes a transfer by its ID
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every transfer
	DeleteAll(ctx context.Context) error
}
