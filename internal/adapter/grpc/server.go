package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/usecase/dashboard"
)

// Converter quotes a conversion between two wallet currencies
type Converter interface {
	Convert(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (domain.Quote, error)
}

// TransferChecker validates and forwards transfer requests
type TransferChecker interface {
	Check(ctx context.Context, walletID uuid.UUID, req domain.TransferRequest) error
	Submit(ctx context.Context, walletID uuid.UUID, req domain.TransferRequest) error
}

// DashboardReader builds the wallet overview
type DashboardReader interface {
	GetDashboard(ctx context.Context, walletID uuid.UUID) (*dashboard.DashboardResult, error)
}

// RateReader serves and refreshes the rate table
type RateReader interface {
	Get(ctx context.Context) (*domain.RateTable, error)
	Refresh(ctx context.Context) (*domain.RateTable, error)
}

var _ WalletFXServiceServer = (*Server)(nil)

// Server implements the WalletFXService gRPC server
type Server struct {
	ConversionService Converter
	TransferService   TransferChecker
	DashboardService  DashboardReader
	RateService       RateReader
	MaxRateAge        time.Duration

	now func() time.Time
}

// NewServer creates a new gRPC server instance
func NewServer(
	conversionService Converter,
	transferService TransferChecker,
	dashboardService DashboardReader,
	rateService RateReader,
	maxRateAge time.Duration,
) *Server {
	return &Server{
		ConversionService: conversionService,
		TransferService:   transferService,
		DashboardService:  dashboardService,
		RateService:       rateService,
		MaxRateAge:        maxRateAge,
		now:               time.Now,
	}
}

// GetDashboard handles the GetDashboard RPC
// Request: wallet_id
func (s *Server) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}

	result, err := s.DashboardService.GetDashboard(ctx, walletID)
	if err != nil {
		return nil, mapError(err)
	}

	breakdown := make([]interface{}, 0, len(result.Breakdown))
	for _, valuation := range result.Breakdown {
		breakdown = append(breakdown, map[string]interface{}{
			"currency":   valuation.Currency.String(),
			"amount":     valuation.Amount.String(),
			"base_value": valuation.BaseValue.String(),
			"priced":     valuation.Priced,
		})
	}

	slices := make([]interface{}, 0, len(result.Slices))
	for _, slice := range result.Slices {
		slices = append(slices, map[string]interface{}{
			"currency":    slice.Currency.String(),
			"amount":      slice.Amount.String(),
			"share":       slice.Share,
			"start_angle": slice.StartAngle,
			"end_angle":   slice.EndAngle,
			"sweep":       slice.Sweep(),
		})
	}

	return newStruct(map[string]interface{}{
		"base":             result.Base.String(),
		"total":            result.Total.String(),
		"breakdown":        breakdown,
		"slices":           slices,
		"rates_updated_at": formatTime(result.RatesUpdatedAt),
		"rates_stale":      result.RatesStale,
		"rates_available":  result.RatesAvailable,
	})
}

// Convert handles the Convert RPC
// Request: from, to, amount
func (s *Server) Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, err := currencyField(req, "from", true)
	if err != nil {
		return nil, err
	}
	to, err := currencyField(req, "to", true)
	if err != nil {
		return nil, err
	}
	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, mapError(err)
	}

	quote, err := s.ConversionService.Convert(ctx, from, to, amount)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{
		"from":      from.String(),
		"to":        to.String(),
		"amount":    amount.String(),
		"result":    quote.Result.String(),
		"rate":      quote.Rate.String(),
		"source":    string(quote.Source),
		"available": quote.IsAvailable(),
	})
}

// ValidateTransfer handles the ValidateTransfer RPC.
// A rejected request is a successful call with valid=false and the rejection reason.
// Request: wallet_id, kind, from_currency, to_currency (optional), amount, recipient
func (s *Server) ValidateTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	walletID, transfer, err := transferFields(req)
	if err == nil {
		err = s.TransferService.Check(ctx, walletID, transfer)
	}
	if err == nil {
		return newStruct(map[string]interface{}{"valid": true})
	}

	var rejection *domain.RejectionError
	if !errors.As(err, &rejection) {
		return nil, mapError(err)
	}

	fields := map[string]interface{}{
		"valid":   false,
		"reason":  string(rejection.Reason),
		"message": rejection.Error(),
	}
	if rejection.Reason == domain.RejectionInsufficientBalance {
		fields["available"] = rejection.Available.String()
	}
	return newStruct(fields)
}

// SubmitTransfer handles the SubmitTransfer RPC
// Request: same fields as ValidateTransfer
func (s *Server) SubmitTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	walletID, transfer, err := transferFields(req)
	if err != nil {
		return nil, mapError(err)
	}

	if err := s.TransferService.Submit(ctx, walletID, transfer); err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"accepted": true})
}

// GetRates handles the GetRates RPC
func (s *Server) GetRates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	table, err := s.RateService.Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return s.rateTableStruct(table)
}

// RefreshRates handles the RefreshRates RPC
func (s *Server) RefreshRates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	table, err := s.RateService.Refresh(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "failed to refresh rates: %v", err)
	}
	return s.rateTableStruct(table)
}

func (s *Server) rateTableStruct(table *domain.RateTable) (*structpb.Struct, error) {
	rates := make(map[string]interface{}, table.Len())
	for code, rate := range table.Rates() {
		rates[code.String()] = rate.String()
	}

	return newStruct(map[string]interface{}{
		"base":       table.Base().String(),
		"rates":      rates,
		"updated_at": formatTime(table.UpdatedAt()),
		"stale":      s.MaxRateAge > 0 && table.IsStale(s.now(), s.MaxRateAge),
	})
}

func transferFields(req *structpb.Struct) (uuid.UUID, domain.TransferRequest, error) {
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return uuid.Nil, domain.TransferRequest{}, err
	}

	kind := domain.TransferKind(strings.ToUpper(stringValue(req, "kind")))
	switch kind {
	case domain.TransferKindDeposit, domain.TransferKindSwap, domain.TransferKindSend:
	default:
		return uuid.Nil, domain.TransferRequest{}, status.Errorf(codes.InvalidArgument, "invalid kind %q: must be DEPOSIT, SWAP or SEND", kind)
	}

	from, err := currencyField(req, "from_currency", true)
	if err != nil {
		return uuid.Nil, domain.TransferRequest{}, err
	}
	amount, err := decimalField(req, "amount")
	if err != nil {
		return uuid.Nil, domain.TransferRequest{}, err
	}

	transfer := domain.TransferRequest{
		Kind:         kind,
		FromCurrency: from,
		Amount:       amount,
		Recipient:    stringValue(req, "recipient"),
	}
	to, err := optionalCurrencyField(req, "to_currency")
	if err != nil {
		return uuid.Nil, domain.TransferRequest{}, err
	}
	if to != "" {
		transfer.ToCurrency = &to
	}

	return walletID, transfer, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	errorMsg := err.Error()

	var rejection *domain.RejectionError
	if errors.As(err, &rejection) || errors.Is(err, domain.ErrUnknownCurrency) {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	if errors.Is(err, domain.ErrWalletNotFound) || errors.Is(err, domain.ErrRatesNotFound) {
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	if errors.Is(err, domain.ErrSubmitterNotConfigured) {
		return status.Errorf(codes.Unimplemented, "%s", errorMsg)
	}

	if errors.Is(err, context.Canceled) {
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
