package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/razecmarketing/schedbank/internal/domain"
)

// Ledger is the authoritative transfer service exposed over gRPC
type Ledger interface {
	Schedule(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error)
	List(ctx context.Context) ([]*domain.Transfer, error)
	Get(ctx context.Context, id string) (*domain.Transfer, error)
	Update(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error)
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
}

// Server implements the TransferService gRPC server
type Server struct {
	Ledger Ledger
	logger *zap.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(ledger Ledger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Ledger: ledger, logger: logger}
}

// ScheduleTransfer handles the ScheduleTransfer RPC
func (s *Server) ScheduleTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	transfer, err := s.Ledger.Schedule(ctx, requestFromStruct(req))
	if err != nil {
		return nil, s.mapError(err)
	}
	return responseToStruct(transfer.Response()), nil
}

// ListTransfers handles the ListTransfers RPC
func (s *Server) ListTransfers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	transfers, err := s.Ledger.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return transfersToList(transfers), nil
}

// GetTransfer handles the GetTransfer RPC
func (s *Server) GetTransfer(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	transfer, err := s.Ledger.Get(ctx, req.GetValue())
	if err != nil {
		return nil, s.mapError(err)
	}
	return responseToStruct(transfer.Response()), nil
}

// UpdateTransfer handles the UpdateTransfer RPC
func (s *Server) UpdateTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	transfer, err := s.Ledger.Update(ctx, requestFromStruct(req))
	if err != nil {
		return nil, s.mapError(err)
	}
	return responseToStruct(transfer.Response()), nil
}

// DeleteTransfer handles the DeleteTransfer RPC
func (s *Server) DeleteTransfer(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.Ledger.Delete(ctx, req.GetValue()); err != nil {
		return nil, s.mapError(err)
	}
	return &emptypb.Empty{}, nil
}

// ClearTransfers handles the ClearTransfers RPC
func (s *Server) ClearTransfers(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.Ledger.ClearAll(ctx); err != nil {
		return nil, s.mapError(err)
	}
	return &emptypb.Empty{}, nil
}

// ErrorDomain identifies ErrorInfo details attached by this service
const ErrorDomain = "schedbank.transfer.v1"

// mapError maps domain errors to gRPC status codes. Unclassified errors are
// logged and reported as Internal without their text.
func (s *Server) mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrTransferNotFound):
		return s.domainStatus(codes.NotFound, err)
	}

	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindConstruction:
		return s.domainStatus(codes.InvalidArgument, err)
	case domain.KindBusinessRule:
		if errors.Is(err, domain.ErrPastDate) || errors.Is(err, domain.ErrNoApplicableTier) {
			return s.domainStatus(codes.InvalidArgument, err)
		}
		return s.domainStatus(codes.FailedPrecondition, err)
	}

	s.logger.Error("unhandled ledger error", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

// domainStatus carries the domain error code as an ErrorInfo reason
func (s *Server) domainStatus(code codes.Code, err error) error {
	st := status.New(code, err.Error())

	var domainErr *domain.Error
	if !errors.As(err, &domainErr) || domainErr.Code == "" {
		return st.Err()
	}

	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   domainErr.Code,
		Domain:   ErrorDomain,
		Metadata: domainErr.Fields,
	})
	if detailErr != nil {
		s.logger.Warn("failed to attach error details", zap.Error(detailErr))
		return st.Err()
	}
	return detailed.Err()
}
