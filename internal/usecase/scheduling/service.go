package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/razecmarketing/schedbank/internal/domain"
)

// SchedulingService orchestrates transfer scheduling against the remote TransferRepository.
// Requests are validated locally before any remote call; remote rejections come back as
// business rule errors.
type SchedulingService struct {
	repo   domain.TransferRepository
	rules  *domain.TransferRules
	engine *domain.FeeEngine
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes a SchedulingService
type Option func(*SchedulingService)

// WithClock sets the source of "today" used for fee previews
func WithClock(now func() time.Time) Option {
	return func(s *SchedulingService) {
		s.now = now
	}
}

// WithFeeEngine replaces the default fee tier table used for fee previews
func WithFeeEngine(engine *domain.FeeEngine) Option {
	return func(s *SchedulingService) {
		s.engine = engine
	}
}

// NewSchedulingService creates a new SchedulingService instance
func NewSchedulingService(
	repo domain.TransferRepository,
	rules *domain.TransferRules,
	logger *zap.Logger,
	opts ...Option,
) *SchedulingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SchedulingService{
		repo:   repo,
		rules:  rules,
		engine: domain.DefaultFeeEngine,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rules == nil {
		s.rules = domain.NewTransferRules(s.now)
	}
	return s
}

// Schedule validates the request and asks the collaborator to schedule it
func (s *SchedulingService) Schedule(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	if err := s.rules.Validate(req).Err(); err != nil {
		return nil, err
	}

	resp, err := s.repo.ScheduleTransfer(ctx, req)
	if err != nil {
		s.logRemoteFailure("schedule", err)
		if status, ok := domain.RemoteStatusOf(err); ok && status == domain.RemoteBadRequest {
			return nil, rejected("transfer was rejected", err)
		}
		return nil, err
	}

	transfer, err := domain.TransferFromResponse(*resp)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer scheduled",
		zap.String("transfer_id", transfer.ID()),
		zap.String("transfer_date", domain.FormatDate(transfer.TransferDate())),
		zap.String("fee", transfer.Fee().String()),
	)
	return transfer, nil
}

// List returns every scheduled transfer
func (s *SchedulingService) List(ctx context.Context) ([]*domain.Transfer, error) {
	responses, err := s.repo.GetAllTransfers(ctx)
	if err != nil {
		s.logRemoteFailure("list", err)
		return nil, domain.NewBusinessRuleError(domain.CodeRemoteFailure, "failed to load transfers", err)
	}

	transfers := make([]*domain.Transfer, 0, len(responses))
	for _, resp := range responses {
		transfer, err := domain.TransferFromResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("transfer %q: %w", resp.ID, err)
		}
		transfers = append(transfers, transfer)
	}
	return transfers, nil
}

// Get fetches a single transfer by its identifier
func (s *SchedulingService) Get(ctx context.Context, id string) (*domain.Transfer, error) {
	if err := requireID(id, "transfer id is required"); err != nil {
		return nil, err
	}

	resp, err := s.repo.GetTransferByID(ctx, id)
	if err != nil {
		s.logRemoteFailure("get", err)
		if status, ok := domain.RemoteStatusOf(err); ok && status == domain.RemoteNotFound {
			return nil, notFound(id, err)
		}
		return nil, err
	}
	return domain.TransferFromResponse(*resp)
}

// Update replaces an existing transfer. The collaborator recomputes the fee.
func (s *SchedulingService) Update(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	if err := s.rules.ValidateForUpdate(req).Err(); err != nil {
		return nil, err
	}

	resp, err := s.repo.UpdateTransfer(ctx, req)
	if err != nil {
		s.logRemoteFailure("update", err)
		status, _ := domain.RemoteStatusOf(err)
		switch status {
		case domain.RemoteNotFound:
			return nil, notFound(req.ID, err)
		case domain.RemoteBadRequest:
			return nil, rejected("update was rejected", err)
		}
		return nil, err
	}

	transfer, err := domain.TransferFromResponse(*resp)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transfer updated", zap.String("transfer_id", transfer.ID()))
	return transfer, nil
}

// Delete removes a transfer
func (s *SchedulingService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, "transfer id is required for delete"); err != nil {
		return err
	}

	if err := s.repo.DeleteTransfer(ctx, id); err != nil {
		s.logRemoteFailure("delete", err)
		if status, ok := domain.RemoteStatusOf(err); ok && status == domain.RemoteNotFound {
			return notFound(id, err)
		}
		return err
	}
	s.logger.Info("transfer deleted", zap.String("transfer_id", id))
	return nil
}

// ClearAll removes every transfer
func (s *SchedulingService) ClearAll(ctx context.Context) error {
	if err := s.repo.ClearAllTransfers(ctx); err != nil {
		s.logRemoteFailure("clear", err)
		return domain.NewBusinessRuleError(domain.CodeRemoteFailure, "failed to clear transfers", err)
	}
	s.logger.Info("all transfers cleared")
	return nil
}

// QuoteFee previews the fee for amount on date against the local clock.
// The collaborator computes the authoritative fee when the transfer is scheduled.
func (s *SchedulingService) QuoteFee(amount domain.Money, date time.Time) (domain.FeeQuote, error) {
	return s.engine.ComputeFee(amount, date, s.now())
}

// FeeTiers exposes the fee table used for previews
func (s *SchedulingService) FeeTiers() []domain.FeeTier {
	return s.engine.Tiers()
}

func (s *SchedulingService) logRemoteFailure(op string, err error) {
	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}
	if status, ok := domain.RemoteStatusOf(err); ok {
		fields = append(fields, zap.String("remote_status", string(status)))
	}
	s.logger.Warn("transfer repository call failed", fields...)
}

func requireID(id, reason string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(map[string]string{domain.FieldID: reason})
	}
	return nil
}

func notFound(id string, cause error) error {
	return domain.NewBusinessRuleError(domain.CodeTransferNotFound, fmt.Sprintf("transfer %s not found", id), cause)
}

// rejected turns a remote bad request into a business rule error. Fee rule
// violations keep their own code so callers can tell them apart.
func rejected(prefix string, err error) error {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		switch remote.Code {
		case domain.CodePastDate, domain.CodeNoApplicableTier:
			return domain.NewBusinessRuleError(remote.Code, remote.Message, err)
		}
	}
	return domain.NewBusinessRuleError(domain.CodeRemoteRejected, rejectionMessage(prefix, err), err)
}

// rejectionMessage keeps the collaborator's reason but drops the transport framing
func rejectionMessage(prefix string, err error) string {
	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return prefix + ": " + remote.Message
	}
	return prefix
}
