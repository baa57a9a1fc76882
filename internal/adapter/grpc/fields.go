package grpc

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/walletfx-backend/internal/domain"
)

func stringValue(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	value, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return value.GetStringValue()
}

func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringValue(req, name))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

func currencyField(req *structpb.Struct, name string, required bool) (domain.CurrencyCode, error) {
	code := strings.TrimSpace(stringValue(req, name))
	if code == "" && required {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return domain.CurrencyCode(code), nil
}

// optionalCurrencyField returns "" when the field is absent or null
func optionalCurrencyField(req *structpb.Struct, name string) (domain.CurrencyCode, error) {
	value, ok := req.GetFields()[name]
	if !ok {
		return "", nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "", nil
	case *structpb.Value_StringValue:
		return domain.CurrencyCode(strings.TrimSpace(kind.StringValue)), nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "invalid %s format: must be a string", name)
	}
}

// decimalField accepts the amount as a decimal string or a JSON number.
// NaN and infinities are reported as an invalid amount rejection.
func decimalField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	value, ok := req.GetFields()[name]
	if !ok {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.Zero, &domain.RejectionError{Reason: domain.RejectionInvalidAmount}
		}
		return decimal.NewFromFloat(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		amount, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
		}
		return amount, nil
	default:
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: must be a string or number", name)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}
