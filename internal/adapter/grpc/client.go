package grpc

import (
	"context"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/razecmarketing/schedbank/internal/domain"
)

// Client implements domain.TransferRepository over the transfer gRPC service.
// Failed calls are returned as *domain.RemoteError.
type Client struct {
	conn grpc.ClientConnInterface
}

var _ domain.TransferRepository = (*Client)(nil)

// NewClient creates a client on an existing connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial opens a plaintext connection to target that sends token with every call
func Dial(target, token string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(TokenInterceptor(token)),
	}
	return grpc.NewClient(target, append(base, opts...)...)
}

// ScheduleTransfer asks the ledger to schedule a new transfer
func (c *Client) ScheduleTransfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResponse, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodScheduleTransfer, requestToStruct(req), out); err != nil {
		return nil, remoteError(err)
	}
	resp := responseFromStruct(out)
	return &resp, nil
}

// GetAllTransfers lists every scheduled transfer
func (c *Client) GetAllTransfers(ctx context.Context) ([]domain.TransferResponse, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, MethodListTransfers, &emptypb.Empty{}, out); err != nil {
		return nil, remoteError(err)
	}
	return responsesFromList(out), nil
}

// GetTransferByID fetches a single transfer
func (c *Client) GetTransferByID(ctx context.Context, id string) (*domain.TransferResponse, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodGetTransfer, wrapperspb.String(id), out); err != nil {
		return nil, remoteError(err)
	}
	resp := responseFromStruct(out)
	return &resp, nil
}

// UpdateTransfer replaces the transfer identified by req.ID
func (c *Client) UpdateTransfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResponse, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodUpdateTransfer, requestToStruct(req), out); err != nil {
		return nil, remoteError(err)
	}
	resp := responseFromStruct(out)
	return &resp, nil
}

// DeleteTransfer removes a transfer
func (c *Client) DeleteTransfer(ctx context.Context, id string) error {
	if err := c.conn.Invoke(ctx, MethodDeleteTransfer, wrapperspb.String(id), new(emptypb.Empty)); err != nil {
		return remoteError(err)
	}
	return nil
}

// ClearAllTransfers removes every transfer
func (c *Client) ClearAllTransfers(ctx context.Context) error {
	if err := c.conn.Invoke(ctx, MethodClearTransfers, &emptypb.Empty{}, new(emptypb.Empty)); err != nil {
		return remoteError(err)
	}
	return nil
}

// remoteError translates a gRPC status into the collaborator error category
func remoteError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &domain.RemoteError{Status: domain.RemoteInternal, Message: err.Error()}
	}
	return &domain.RemoteError{
		Status:  remoteStatus(st.Code()),
		Code:    reasonOf(st),
		Message: strings.TrimSpace(st.Message()),
	}
}

// reasonOf returns the domain code the ledger attached to st, if any
func reasonOf(st *status.Status) string {
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return info.GetReason()
		}
	}
	return ""
}

func remoteStatus(code codes.Code) domain.RemoteStatus {
	switch code {
	case codes.InvalidArgument, codes.OutOfRange:
		return domain.RemoteBadRequest
	case codes.NotFound:
		return domain.RemoteNotFound
	case codes.AlreadyExists, codes.Aborted, codes.FailedPrecondition:
		return domain.RemoteConflict
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return domain.RemoteUnavailable
	default:
		return domain.RemoteInternal
	}
}
