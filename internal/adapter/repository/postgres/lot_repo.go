package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goldfolio-backend/internal/domain"
)

const lotColumns = `id, asset_type, amount, purchase_price, purchase_date, status, selling_price, selling_date`

// lotRepository implements domain.LotRepository
type lotRepository struct {
	db *DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *DB) domain.LotRepository {
	return &lotRepository{db: db}
}

// List retrieves lots matching the filter, newest purchase first
func (r *lotRepository) List(ctx context.Context, filter domain.LotFilter) ([]*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots`
	var args []interface{}

	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY purchase_date DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	lots := make([]*domain.Lot, 0)
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w: %w", domain.ErrPersistence, err)
	}

	return lots, nil
}

// GetByID retrieves a lot by its ID
func (r *lotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`

	lot, err := scanLot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lot %s %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	return lot, nil
}

// Create inserts a new lot, assigning its ID
func (r *lotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	if err := lot.Validate(); err != nil {
		return err
	}
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}

	if err := insertLot(ctx, r.db, lot); err != nil {
		return fmt.Errorf("failed to create lot: %w: %w", domain.ErrPersistence, err)
	}

	return nil
}

// ApplySale commits a sale plan in a single database transaction.
// The original row is only touched if it is still active and still holds the
// amount the plan was computed from.
func (r *lotRepository) ApplySale(ctx context.Context, plan *domain.SalePlan) error {
	if err := plan.Original.Validate(); err != nil {
		return err
	}
	if plan.Sold != nil {
		if err := plan.Sold.Validate(); err != nil {
			return err
		}
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", domain.ErrPersistence, err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE lots
		SET amount = $1, status = $2, selling_price = $3, selling_date = $4
		WHERE id = $5 AND status = 'active' AND amount = $6
	`

	orig := plan.Original
	res, err := dbTx.ExecContext(ctx, updateQuery,
		orig.Amount.String(),
		string(orig.Status),
		nullDecimal(orig.SellingPrice),
		nullTime(orig.SellingDate),
		orig.ID,
		plan.ExpectedAmount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w: %w", domain.ErrPersistence, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w: %w", domain.ErrPersistence, err)
	}
	if affected == 0 {
		var exists bool
		if err := dbTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM lots WHERE id = $1)`, orig.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check lot existence: %w: %w", domain.ErrPersistence, err)
		}
		if !exists {
			return fmt.Errorf("lot %s %w", orig.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("lot %s changed since it was read: %w", orig.ID, domain.ErrConflict)
	}

	if plan.Sold != nil {
		if plan.Sold.ID == uuid.Nil {
			plan.Sold.ID = uuid.New()
		}
		if err := insertLot(ctx, dbTx, plan.Sold); err != nil {
			return fmt.Errorf("failed to insert sold lot: %w: %w", domain.ErrPersistence, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w: %w", domain.ErrPersistence, err)
	}

	return nil
}

// Delete removes a lot
func (r *lotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w: %w", domain.ErrPersistence, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w: %w", domain.ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("lot %s %w", id, domain.ErrNotFound)
	}

	return nil
}

// execer is satisfied by both *DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertLot(ctx context.Context, db execer, lot *domain.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := db.ExecContext(ctx, query,
		lot.ID,
		string(lot.AssetType),
		lot.Amount.String(),
		lot.PurchasePrice.String(),
		lot.PurchaseDate,
		string(lot.Status),
		nullDecimal(lot.SellingPrice),
		nullTime(lot.SellingDate),
	)
	return err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLot(row rowScanner) (*domain.Lot, error) {
	var lot domain.Lot
	var assetType, status string
	var amountStr, purchasePriceStr string
	var sellingPrice sql.NullString
	var sellingDate sql.NullTime

	err := row.Scan(
		&lot.ID,
		&assetType,
		&amountStr,
		&purchasePriceStr,
		&lot.PurchaseDate,
		&status,
		&sellingPrice,
		&sellingDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan lot: %w: %w", domain.ErrPersistence, err)
	}

	lot.AssetType = domain.AssetType(assetType)
	lot.Status = domain.LotStatus(status)
	lot.PurchaseDate = lot.PurchaseDate.UTC()

	// Parse amount and purchase_price (NUMERIC)
	if lot.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w: %w", domain.ErrPersistence, err)
	}
	if lot.PurchasePrice, err = decimal.NewFromString(purchasePriceStr); err != nil {
		return nil, fmt.Errorf("failed to parse purchase_price: %w: %w", domain.ErrPersistence, err)
	}

	// Parse selling terms (nullable)
	if sellingPrice.Valid {
		price, err := decimal.NewFromString(sellingPrice.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse selling_price: %w: %w", domain.ErrPersistence, err)
		}
		lot.SellingPrice = &price
	}
	if sellingDate.Valid {
		d := sellingDate.Time.UTC()
		lot.SellingDate = &d
	}

	return &lot, nil
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
