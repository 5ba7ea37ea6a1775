package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

// MaxSellAttempts bounds how many times a sale is recomputed after losing a
// race with a concurrent write to the same lot.
const MaxSellAttempts = 3

// BuyInput represents the input for recording a purchase
type BuyInput struct {
	AssetType     domain.AssetType
	Amount        decimal.Decimal
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
}

// SellInput represents the input for selling from a lot
type SellInput struct {
	LotID        uuid.UUID
	Amount       decimal.Decimal
	SellingPrice decimal.Decimal
	SellingDate  time.Time
}

// LedgerService handles lot lifecycle operations
type LedgerService struct {
	LotRepo domain.LotRepository
	Logger  *zap.Logger
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(lotRepo domain.LotRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		LotRepo: lotRepo,
		Logger:  logger,
	}
}

// ListActive returns lots still held, newest purchase first
func (s *LedgerService) ListActive(ctx context.Context) ([]*domain.Lot, error) {
	return s.LotRepo.List(ctx, domain.ActiveLots())
}

// ListAll returns every lot regardless of status, newest purchase first
func (s *LedgerService) ListAll(ctx context.Context) ([]*domain.Lot, error) {
	return s.LotRepo.List(ctx, domain.AllLots())
}

// Buy records a new active lot
func (s *LedgerService) Buy(ctx context.Context, input BuyInput) (*domain.Lot, error) {
	lot, err := domain.NewLot(input.AssetType, input.Amount, input.PurchasePrice, input.PurchaseDate)
	if err != nil {
		return nil, err
	}

	if err := s.LotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}

	s.Logger.Info("lot bought",
		zap.String("lot_id", lot.ID.String()),
		zap.String("asset_type", string(lot.AssetType)),
		zap.String("amount", lot.Amount.String()),
		zap.String("purchase_price", lot.PurchasePrice.String()))

	return lot, nil
}

// Sell sells input.Amount grams from a lot.
// Logic:
//  1. Fetch the lot (NotFound if absent)
//  2. Plan the sale in memory: full sale flips the lot to sold, partial sale
//     reduces it and creates a new sold lot
//  3. Commit the plan atomically; if another writer changed the lot in the
//     meantime, re-read and re-plan up to MaxSellAttempts times
func (s *LedgerService) Sell(ctx context.Context, input SellInput) (*domain.SalePlan, error) {
	for attempt := 1; ; attempt++ {
		lot, err := s.LotRepo.GetByID(ctx, input.LotID)
		if err != nil {
			return nil, err
		}

		plan, err := domain.PlanSale(lot, input.Amount, input.SellingPrice, input.SellingDate)
		if err != nil {
			return nil, err
		}

		err = s.LotRepo.ApplySale(ctx, plan)
		if err == nil {
			s.logSale(plan)
			return plan, nil
		}

		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		if attempt >= MaxSellAttempts {
			return nil, fmt.Errorf("sale abandoned after %d attempts: %w", attempt, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		s.Logger.Warn("sale conflicted with a concurrent write, retrying",
			zap.String("lot_id", input.LotID.String()),
			zap.Int("attempt", attempt))
	}
}

// Delete removes a lot unconditionally
func (s *LedgerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.LotRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Info("lot deleted", zap.String("lot_id", id.String()))
	return nil
}

func (s *LedgerService) logSale(plan *domain.SalePlan) {
	fields := []zap.Field{
		zap.String("lot_id", plan.Original.ID.String()),
		zap.String("kind", string(plan.Kind)),
		zap.String("held", plan.ExpectedAmount.String()),
	}
	if plan.Sold != nil {
		fields = append(fields,
			zap.String("sold_lot_id", plan.Sold.ID.String()),
			zap.String("sold", plan.Sold.Amount.String()),
			zap.String("remaining", plan.Original.Amount.String()))
	}
	s.Logger.Info("lot sold", fields...)
}
