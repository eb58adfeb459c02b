package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razecmarketing/schedbank/internal/domain"
)

const testID = "3f2c1b0a-9e8d-4c7b-a6f5-e4d3c2b1a098"

var (
	scheduleDate = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	transferDate = time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)
	columns      = []string{"id", "source_account", "target_account", "amount", "fee", "schedule_date", "transfer_date"}
)

func newMockRepo(t *testing.T) (domain.TransferStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTransferRepository(&DB{DB: db}), mock
}

func sampleTransfer(t *testing.T) *domain.Transfer {
	t.Helper()
	transfer, err := domain.TransferFromResponse(domain.TransferResponse{
		ID:            testID,
		SourceAccount: "1111111111",
		TargetAccount: "2222222222",
		Amount:        "100.00",
		Fee:           "8.20",
		ScheduleDate:  "2026-10-15",
		TransferDate:  "2026-10-30",
	})
	require.NoError(t, err)
	return transfer
}

func TestTransferRepository_Save(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transfers")).
		WithArgs(testID, "1111111111", "2222222222", "100.00", "8.20", scheduleDate, transferDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), sampleTransfer(t))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_SaveErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.Save(context.Background(), sampleTransfer(t).WithID(""))
	assert.ErrorIs(t, err, domain.ErrMissingField)

	dbErr := errors.New("connection reset by peer")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transfers")).WillReturnError(dbErr)

	err = repo.Save(context.Background(), sampleTransfer(t))
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to save transfer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transfers WHERE id = $1")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(testID, "1111111111", "2222222222", "100.00", "8.20", scheduleDate, transferDate))

	transfer, err := repo.FindByID(context.Background(), testID)

	require.NoError(t, err)
	assert.Equal(t, sampleTransfer(t).Response(), transfer.Response())
	assert.Equal(t, "108.20", transfer.TotalAmount().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transfers WHERE id = $1")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.FindByID(context.Background(), testID)

	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
	assert.Equal(t, domain.KindBusinessRule, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_FindByIDRejectsCorruptRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transfers WHERE id = $1")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(testID, "1111111111", "1111111111", "100.00", "8.20", scheduleDate, transferDate))

	_, err := repo.FindByID(context.Background(), testID)

	assert.ErrorIs(t, err, domain.ErrSameAccount)
}

func TestTransferRepository_FindAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	later := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM transfers ORDER BY transfer_date, id")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(testID, "1111111111", "2222222222", "100.00", "8.20", scheduleDate, transferDate).
			AddRow("8e7d6c5b-4a39-4281-9706-f5e4d3c2b1a0", "3333333333", "4444444444", "1000.00", "69.00", scheduleDate, later))

	transfers, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, testID, transfers[0].ID())
	assert.Equal(t, "69.00", transfers[1].Fee().String())
	assert.Equal(t, "4444-444-444", transfers[1].TargetAccount().Format())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_FindAllEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transfers ORDER BY")).
		WillReturnRows(sqlmock.NewRows(columns))

	transfers, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, transfers)
	assert.Empty(t, transfers)
}

func TestTransferRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transfers WHERE id = $1")).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transfers WHERE id = $1")).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), testID))
	assert.ErrorIs(t, repo.Delete(context.Background(), testID), domain.ErrTransferNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_DeleteAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transfers")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
