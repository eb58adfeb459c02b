package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razecmarketing/schedbank/internal/domain"
)

// Failure reasons reported to the Recorder
const (
	ReasonValidation    = "validation"
	ReasonPastDate      = "past_date"
	ReasonBeyondHorizon = "beyond_horizon"
	ReasonConstruction  = "construction"
	ReasonStorage       = "storage"
)

// Recorder receives scheduling outcomes
type Recorder interface {
	TransferScheduled()
	TransferFailed(reason string)
	ObserveFeeCalculation(elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) TransferScheduled()                  {}
func (nopRecorder) TransferFailed(string)               {}
func (nopRecorder) ObserveFeeCalculation(time.Duration) {}

// LedgerService is the authoritative owner of scheduled transfers. It computes the
// fee against its own clock, assigns identifiers and persists through a TransferStore.
type LedgerService struct {
	store    domain.TransferStore
	rules    *domain.TransferRules
	engine   *domain.FeeEngine
	now      func() time.Time
	newID    func() string
	recorder Recorder
	logger   *zap.Logger
}

// Option customizes a LedgerService
type Option func(*LedgerService)

// WithClock sets the source of "today"
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithFeeEngine replaces the default fee tier table
func WithFeeEngine(engine *domain.FeeEngine) Option {
	return func(s *LedgerService) { s.engine = engine }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

// WithRecorder reports outcomes to r
func WithRecorder(r Recorder) Option {
	return func(s *LedgerService) { s.recorder = r }
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(store domain.TransferStore, logger *zap.Logger, opts ...Option) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LedgerService{
		store:    store,
		engine:   domain.DefaultFeeEngine,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		recorder: nopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rules = domain.NewTransferRules(s.now)
	return s
}

// Schedule validates the request, prices it and stores a new transfer
func (s *LedgerService) Schedule(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	if err := s.rules.Validate(req).Err(); err != nil {
		s.recorder.TransferFailed(ReasonValidation)
		return nil, err
	}

	req.ID = s.newID()
	transfer, err := s.price(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, transfer); err != nil {
		s.recorder.TransferFailed(ReasonStorage)
		s.logger.Error("failed to save transfer", zap.String("transfer_id", transfer.ID()), zap.Error(err))
		return nil, err
	}

	s.recorder.TransferScheduled()
	s.logger.Info("transfer scheduled",
		zap.String("transfer_id", transfer.ID()),
		zap.String("amount", transfer.Amount().String()),
		zap.String("fee", transfer.Fee().String()),
		zap.String("transfer_date", domain.FormatDate(transfer.TransferDate())),
	)
	return transfer, nil
}

// List returns every transfer ordered by transfer date
func (s *LedgerService) List(ctx context.Context) ([]*domain.Transfer, error) {
	return s.store.FindAll(ctx)
}

// Get returns a single transfer
func (s *LedgerService) Get(ctx context.Context, id string) (*domain.Transfer, error) {
	id, err := s.checkID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Update replaces a transfer. The fee is recomputed and the schedule date becomes today.
func (s *LedgerService) Update(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	if err := s.rules.ValidateForUpdate(req).Err(); err != nil {
		s.recorder.TransferFailed(ReasonValidation)
		return nil, err
	}

	id, err := s.checkID(req.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, err
	}

	req.ID = id
	transfer, err := s.price(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, transfer); err != nil {
		s.recorder.TransferFailed(ReasonStorage)
		s.logger.Error("failed to save transfer", zap.String("transfer_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("transfer updated", zap.String("transfer_id", id), zap.String("fee", transfer.Fee().String()))
	return transfer, nil
}

// Delete removes a transfer
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	id, err := s.checkID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("transfer deleted", zap.String("transfer_id", id))
	return nil
}

// ClearAll removes every transfer
func (s *LedgerService) ClearAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Info("all transfers cleared")
	return nil
}

// price computes the fee for a validated request and builds the transfer scheduled today
func (s *LedgerService) price(req domain.TransferRequest) (*domain.Transfer, error) {
	today := s.now()

	amount, err := domain.ParseMoney(strings.TrimSpace(req.Amount))
	if err != nil {
		s.recorder.TransferFailed(ReasonConstruction)
		return nil, err
	}
	transferDate, err := domain.ParseDate(req.TransferDate)
	if err != nil {
		s.recorder.TransferFailed(ReasonValidation)
		return nil, domain.NewValidationError(map[string]string{domain.FieldTransferDate: "transfer date must be a valid date (YYYY-MM-DD)"})
	}

	start := time.Now()
	quote, err := s.engine.ComputeFee(amount, transferDate, today)
	s.recorder.ObserveFeeCalculation(time.Since(start))
	if err != nil {
		s.recorder.TransferFailed(feeFailureReason(err))
		return nil, err
	}

	transfer, err := domain.NewScheduledTransfer(req, quote, today)
	if err != nil {
		s.recorder.TransferFailed(ReasonConstruction)
		return nil, err
	}
	return transfer, nil
}

// checkID normalizes id. Identifiers that are not UUIDs can never resolve.
func (s *LedgerService) checkID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewValidationError(map[string]string{domain.FieldID: "transfer id is required"})
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NewTransferNotFoundError(id)
	}
	return parsed.String(), nil
}

func feeFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPastDate):
		return ReasonPastDate
	case errors.Is(err, domain.ErrNoApplicableTier):
		return ReasonBeyondHorizon
	default:
		return ReasonConstruction
	}
}
