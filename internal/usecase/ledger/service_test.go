package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/razecmarketing/schedbank/internal/adapter/repository/memory"
	"github.com/razecmarketing/schedbank/internal/domain"
)

// MockRecorder is a mock implementation of Recorder for testing
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) TransferScheduled() {
	m.Called()
}

func (m *MockRecorder) TransferFailed(reason string) {
	m.Called(reason)
}

func (m *MockRecorder) ObserveFeeCalculation(elapsed time.Duration) {
	m.Called(elapsed)
}

// MockTransferStore is a mock implementation of TransferStore for testing
type MockTransferStore struct {
	mock.Mock
}

func (m *MockTransferStore) Save(ctx context.Context, t *domain.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransferStore) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferStore) FindAll(ctx context.Context) ([]*domain.Transfer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transfer), args.Error(1)
}

func (m *MockTransferStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransferStore) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var today = time.Date(2026, 10, 15, 16, 20, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	}
}

func newTestLedger(store domain.TransferStore, opts ...Option) *LedgerService {
	base := []Option{
		WithClock(func() time.Time { return today }),
		WithIDGenerator(sequentialIDs()),
	}
	return NewLedgerService(store, zap.NewNop(), append(base, opts...)...)
}

func request(amount string, days int) domain.TransferRequest {
	return domain.TransferRequest{
		SourceAccount: "1111111111",
		TargetAccount: "2222222222",
		Amount:        amount,
		TransferDate:  today.AddDate(0, 0, days).Format(domain.DateLayout),
	}
}

func TestSchedule_ComputesFeeAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransferStore()
	ledger := newTestLedger(store)

	transfer, err := ledger.Schedule(ctx, request("100", 15))

	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", transfer.ID())
	assert.Equal(t, "8.20", transfer.Fee().String())
	assert.Equal(t, "108.20", transfer.TotalAmount().String())
	assert.Equal(t, "2026-10-15", domain.FormatDate(transfer.ScheduleDate()))

	stored, err := store.FindByID(ctx, transfer.ID())
	require.NoError(t, err)
	assert.Equal(t, transfer.Response(), stored.Response())
}

func TestSchedule_IgnoresClientID(t *testing.T) {
	ledger := newTestLedger(memory.NewTransferStore())

	req := request("100", 0)
	req.ID = "client-chosen"
	transfer, err := ledger.Schedule(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", transfer.ID())
	assert.Equal(t, "5.50", transfer.Fee().String())
}

func TestSchedule_UsesConfiguredFeeEngine(t *testing.T) {
	engine := domain.MustNewFeeEngine([]domain.FeeTier{
		{MinDays: 0, MaxDays: 10, FixedFee: decimal.NewFromInt(1), Rate: decimal.RequireFromString("0.01")},
	})
	ledger := newTestLedger(memory.NewTransferStore(), WithFeeEngine(engine))

	transfer, err := ledger.Schedule(context.Background(), request("100", 10))
	require.NoError(t, err)
	assert.Equal(t, "2.00", transfer.Fee().String())

	_, err = ledger.Schedule(context.Background(), request("100", 15))
	assert.ErrorIs(t, err, domain.ErrNoApplicableTier)
}

func TestSchedule_Failures(t *testing.T) {
	tests := []struct {
		name       string
		req        domain.TransferRequest
		wantReason string
		wantKind   domain.ErrorKind
		wantErr    error
	}{
		{
			name:       "invalid request",
			req:        domain.TransferRequest{SourceAccount: "1111111111", TargetAccount: "1111111111", Amount: "0", TransferDate: "2026-10-01"},
			wantReason: ReasonValidation,
			wantKind:   domain.KindValidation,
		},
		{
			name:       "beyond horizon",
			req:        request("100", 51),
			wantReason: ReasonBeyondHorizon,
			wantKind:   domain.KindBusinessRule,
			wantErr:    domain.ErrNoApplicableTier,
		},
		{
			name:       "fee rounds to zero",
			req:        request("0.10", 45),
			wantReason: ReasonConstruction,
			wantKind:   domain.KindConstruction,
			wantErr:    domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockTransferStore)
			recorder := new(MockRecorder)
			recorder.On("TransferFailed", tt.wantReason).Return()
			recorder.On("ObserveFeeCalculation", mock.Anything).Return().Maybe()

			_, err := newTestLedger(store, WithRecorder(recorder)).Schedule(context.Background(), tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			recorder.AssertExpectations(t)
			store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestSchedule_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockTransferStore)
	recorder := new(MockRecorder)
	storageErr := errors.New("connection refused")

	store.On("Save", ctx, mock.AnythingOfType("*domain.Transfer")).Return(storageErr)
	recorder.On("ObserveFeeCalculation", mock.Anything).Return()
	recorder.On("TransferFailed", ReasonStorage).Return()

	_, err := newTestLedger(store, WithRecorder(recorder)).Schedule(ctx, request("100", 3))

	assert.ErrorIs(t, err, storageErr)
	recorder.AssertExpectations(t)
	recorder.AssertNotCalled(t, "TransferScheduled")
}

func TestSchedule_RecordsSuccess(t *testing.T) {
	recorder := new(MockRecorder)
	recorder.On("ObserveFeeCalculation", mock.Anything).Return()
	recorder.On("TransferScheduled").Return()

	_, err := newTestLedger(memory.NewTransferStore(), WithRecorder(recorder)).Schedule(context.Background(), request("1000", 30))

	require.NoError(t, err)
	recorder.AssertExpectations(t)
	recorder.AssertNotCalled(t, "TransferFailed", mock.Anything)
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(memory.NewTransferStore())

	late, err := ledger.Schedule(ctx, request("100", 40))
	require.NoError(t, err)
	early, err := ledger.Schedule(ctx, request("100", 2))
	require.NoError(t, err)

	all, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID(), all[0].ID())
	assert.Equal(t, late.ID(), all[1].ID())

	found, err := ledger.Get(ctx, late.ID())
	require.NoError(t, err)
	assert.Equal(t, "4.70", found.Fee().String())

	_, err = ledger.Get(ctx, "00000000-0000-4000-8000-000000000099")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)

	_, err = ledger.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)

	_, err = ledger.Get(ctx, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUpdate_RecomputesFeeAndKeepsID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransferStore()
	scheduledAt := today.AddDate(0, 0, -5)

	original, err := newTestLedger(store, WithClock(func() time.Time { return scheduledAt })).
		Schedule(ctx, request("100", 5))
	require.NoError(t, err)
	assert.Equal(t, "12.00", original.Fee().String())

	ledger := newTestLedger(store)
	req := request("1000", 15)
	req.ID = original.ID()

	updated, err := ledger.Update(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, original.ID(), updated.ID())
	assert.Equal(t, "82.00", updated.Fee().String())
	assert.Equal(t, "2026-10-15", domain.FormatDate(updated.ScheduleDate()))
	assert.Equal(t, "12.00", original.Fee().String(), "the previous instance is never mutated")

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdate_Failures(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(memory.NewTransferStore())

	_, err := ledger.Update(ctx, request("100", 5))
	assert.Contains(t, domain.FieldErrors(err), domain.FieldID)

	req := request("100", 5)
	req.ID = "00000000-0000-4000-8000-000000000042"
	_, err = ledger.Update(ctx, req)
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestDeleteAndClearAll(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(memory.NewTransferStore())

	first, err := ledger.Schedule(ctx, request("100", 1))
	require.NoError(t, err)
	_, err = ledger.Schedule(ctx, request("100", 2))
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(ctx, first.ID()))
	assert.ErrorIs(t, ledger.Delete(ctx, first.ID()), domain.ErrTransferNotFound)
	assert.Equal(t, domain.KindValidation, domain.KindOf(ledger.Delete(ctx, " ")))

	require.NoError(t, ledger.ClearAll(ctx))
	all, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
