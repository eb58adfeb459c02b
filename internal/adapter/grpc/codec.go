package grpc

import (
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/razecmarketing/schedbank/internal/domain"
)

// Wire keys of the transfer field bag
const (
	keyID            = "id"
	keySourceAccount = "sourceAccount"
	keyTargetAccount = "targetAccount"
	keyAmount        = "amount"
	keyFee           = "fee"
	keyScheduleDate  = "scheduleDate"
	keyTransferDate  = "transferDate"
)

func requestToStruct(req domain.TransferRequest) *structpb.Struct {
	return stringStruct(map[string]string{
		keyID:            req.ID,
		keySourceAccount: req.SourceAccount,
		keyTargetAccount: req.TargetAccount,
		keyAmount:        req.Amount,
		keyTransferDate:  req.TransferDate,
	})
}

func requestFromStruct(s *structpb.Struct) domain.TransferRequest {
	return domain.TransferRequest{
		ID:            stringField(s, keyID),
		SourceAccount: stringField(s, keySourceAccount),
		TargetAccount: stringField(s, keyTargetAccount),
		Amount:        stringField(s, keyAmount),
		TransferDate:  stringField(s, keyTransferDate),
	}
}

func responseToStruct(resp domain.TransferResponse) *structpb.Struct {
	return stringStruct(map[string]string{
		keyID:            resp.ID,
		keySourceAccount: resp.SourceAccount,
		keyTargetAccount: resp.TargetAccount,
		keyAmount:        resp.Amount,
		keyFee:           resp.Fee,
		keyScheduleDate:  resp.ScheduleDate,
		keyTransferDate:  resp.TransferDate,
	})
}

func responseFromStruct(s *structpb.Struct) domain.TransferResponse {
	return domain.TransferResponse{
		ID:            stringField(s, keyID),
		SourceAccount: stringField(s, keySourceAccount),
		TargetAccount: stringField(s, keyTargetAccount),
		Amount:        stringField(s, keyAmount),
		Fee:           stringField(s, keyFee),
		ScheduleDate:  stringField(s, keyScheduleDate),
		TransferDate:  stringField(s, keyTransferDate),
	}
}

func transfersToList(transfers []*domain.Transfer) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(transfers))
	for _, t := range transfers {
		values = append(values, structpb.NewStructValue(responseToStruct(t.Response())))
	}
	return &structpb.ListValue{Values: values}
}

func responsesFromList(list *structpb.ListValue) []domain.TransferResponse {
	responses := make([]domain.TransferResponse, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		responses = append(responses, responseFromStruct(v.GetStructValue()))
	}
	return responses
}

func stringStruct(fields map[string]string) *structpb.Struct {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
	for k, v := range fields {
		if v != "" {
			s.Fields[k] = structpb.NewStringValue(v)
		}
	}
	return s
}

// stringField reads a field as text. Numbers are accepted for clients that send
// amounts as JSON numbers; anything else reads as missing.
func stringField(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}
