package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/razecmarketing/schedbank/internal/domain"
)

const transferColumns = `id, source_account, target_account, amount, fee, schedule_date, transfer_date`

// transferRepository implements domain.TransferStore
type transferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *DB) domain.TransferStore {
	return &transferRepository{db: db}
}

// Save inserts a transfer or replaces the row with the same ID
func (r *transferRepository) Save(ctx context.Context, t *domain.Transfer) error {
	if !t.IsPersisted() {
		return domain.NewConstructionError(domain.CodeMissingField, "transfer id is required to save")
	}

	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			source_account = EXCLUDED.source_account,
			target_account = EXCLUDED.target_account,
			amount = EXCLUDED.amount,
			fee = EXCLUDED.fee,
			schedule_date = EXCLUDED.schedule_date,
			transfer_date = EXCLUDED.transfer_date
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID(),
		t.SourceAccount().Value(),
		t.TargetAccount().Value(),
		t.Amount().String(),
		t.Fee().String(),
		t.ScheduleDate(),
		t.TransferDate(),
	)
	if err != nil {
		return fmt.Errorf("failed to save transfer: %w", err)
	}
	return nil
}

// FindByID retrieves a transfer by its ID
func (r *transferRepository) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	transfer, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewTransferNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get transfer by ID: %w", err)
	}
	return transfer, nil
}

// FindAll retrieves every transfer ordered by transfer date
func (r *transferRepository) FindAll(ctx context.Context) ([]*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers ORDER BY transfer_date, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]*domain.Transfer, 0)
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}
	return transfers, nil
}

// Delete removes a transfer by its ID
func (r *transferRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transfers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewTransferNotFoundError(id)
	}
	return nil
}

// DeleteAll removes every transfer
func (r *transferRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transfers`); err != nil {
		return fmt.Errorf("failed to clear transfers: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	var (
		id, source, target         string
		amount, fee                decimal.Decimal
		scheduleDate, transferDate time.Time
	)
	if err := row.Scan(&id, &source, &target, &amount, &fee, &scheduleDate, &transferDate); err != nil {
		return nil, err
	}

	sourceAccount, err := domain.NewAccountNumber(strings.TrimSpace(source))
	if err != nil {
		return nil, err
	}
	targetAccount, err := domain.NewAccountNumber(strings.TrimSpace(target))
	if err != nil {
		return nil, err
	}
	amountMoney, err := domain.NewMoney(amount)
	if err != nil {
		return nil, err
	}
	feeMoney, err := domain.NewMoney(fee)
	if err != nil {
		return nil, err
	}

	return domain.NewTransfer(domain.TransferParams{
		ID:            id,
		SourceAccount: sourceAccount,
		TargetAccount: targetAccount,
		Amount:        amountMoney,
		Fee:           feeMoney,
		ScheduleDate:  scheduleDate,
		TransferDate:  transferDate,
	})
}
