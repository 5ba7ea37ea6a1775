package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
)

// Server implements the PortfolioService gRPC server
type Server struct {
	LedgerService    *ledger.LedgerService
	PortfolioService *portfolio.PortfolioService
}

var _ PortfolioServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(ledgerService *ledger.LedgerService, portfolioService *portfolio.PortfolioService) *Server {
	return &Server{
		LedgerService:    ledgerService,
		PortfolioService: portfolioService,
	}
}

// ListLots handles the ListLots RPC
// Request: {status?: "active" | "sold" | "all"}, empty means all
func (s *Server) ListLots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		lots []*domain.Lot
		err  error
	)

	switch filter := stringField(req, "status"); filter {
	case "", "all":
		lots, err = s.LedgerService.ListAll(ctx)
	case string(domain.LotStatusActive):
		lots, err = s.LedgerService.ListActive(ctx)
	case string(domain.LotStatusSold):
		sold := domain.LotStatusSold
		lots, err = s.LedgerService.LotRepo.List(ctx, domain.LotFilter{Status: &sold})
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid status filter %q", filter)
	}
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"lots": lotList(lots)})
}

// Buy handles the Buy RPC
// Request: {asset_type, amount, purchase_price, purchase_date}
func (s *Server) Buy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := ledger.ParseBuyInput(
		stringField(req, "asset_type"),
		stringField(req, "amount"),
		stringField(req, "purchase_price"),
		stringField(req, "purchase_date"),
	)
	if err != nil {
		return newStruct(resultFields(ledger.ResultOf(err)))
	}

	lot, err := s.LedgerService.Buy(ctx, input)
	fields := resultFields(ledger.ResultOf(err))
	if err == nil {
		fields["lot"] = lotFields(lot)
	}
	return newStruct(fields)
}

// Sell handles the Sell RPC
// Request: {lot_id, amount, selling_price, selling_date}
func (s *Server) Sell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := ledger.ParseSellInput(
		stringField(req, "lot_id"),
		stringField(req, "amount"),
		stringField(req, "selling_price"),
		stringField(req, "selling_date"),
	)
	if err != nil {
		return newStruct(resultFields(ledger.ResultOf(err)))
	}

	plan, err := s.LedgerService.Sell(ctx, input)
	fields := resultFields(ledger.ResultOf(err))
	if err == nil {
		fields["sale"] = string(plan.Kind)
		fields["lot"] = lotFields(plan.Original)
		if plan.Sold != nil {
			fields["sold_lot"] = lotFields(plan.Sold)
		}
	}
	return newStruct(fields)
}

// DeleteLot handles the DeleteLot RPC
// Request: {lot_id}
func (s *Server) DeleteLot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuid.Parse(stringField(req, "lot_id"))
	if err != nil {
		return newStruct(resultFields(ledger.Result{
			Error: "invalid lot_id format: " + err.Error(),
			Kind:  domain.ErrorKind(domain.ErrValidation),
		}))
	}

	return newStruct(resultFields(ledger.ResultOf(s.LedgerService.Delete(ctx, id))))
}

// GetPrices handles the GetPrices RPC
func (s *Server) GetPrices(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	snapshot, priceStatus, err := s.PortfolioService.CurrentPrices(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(snapshotFields(snapshot, priceStatus))
}

// GetPortfolio handles the GetPortfolio RPC
func (s *Server) GetPortfolio(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	overview, err := s.PortfolioService.Overview(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(overviewFields(overview))
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrUpstreamFetch), errors.Is(err, domain.ErrParse):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}
