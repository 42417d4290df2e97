package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcliao/medstock/internal/model"
	"github.com/rcliao/medstock/internal/projection"
)

// Restocked stock is stored with the fewest decimal places, from
// minStockPlaces up to maxStockPlaces, that keep every whole unit and
// whole day of the exact supply.
const (
	minStockPlaces = 4
	maxStockPlaces = 16
)

// restockedPacks returns the stock in packs for left units plus packs
// bought. The exact quotient is rounded up, then checked so the stored
// stock floors to the same whole units and days as the exact total.
func restockedPacks(left, packs, packSize, usage decimal.Decimal) decimal.Decimal {
	total := left.Add(packs.Mul(packSize))
	wantUnits := total.Floor()
	var wantDays int64
	if usage.IsPositive() {
		wantDays = projection.DaysCovered(total, usage)
	}

	exact := left.DivRound(packSize, 2*maxStockPlaces)
	var stock decimal.Decimal
	for places := int32(minStockPlaces); places <= maxStockPlaces; places++ {
		stock = exact.RoundCeil(places).Add(packs)
		units := stock.Mul(packSize)
		if !units.Floor().Equal(wantUnits) {
			continue
		}
		if usage.IsPositive() && projection.DaysCovered(units, usage) != wantDays {
			continue
		}
		return stock
	}
	return stock
}

// Restock adds p.Packs to what is left at p.Now and moves the baseline to p.Now.
func (s *SQLiteStore) Restock(ctx context.Context, p RestockParams) (*model.Medicine, *Restock, error) {
	if p.Packs.IsNegative() {
		return nil, nil, fmt.Errorf("packs cannot be negative, got %s", p.Packs)
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	m, err := getMedicine(ctx, tx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	left, err := projection.UnitsLeft(*m, now)
	if err != nil {
		return nil, nil, err
	}

	before := m.Stock
	m.Stock = restockedPacks(left, p.Packs, m.PackSize, m.DailyUsage())
	updated := now.UnixMilli()
	m.UpdatedAt = &updated
	if err := updateMedicine(ctx, tx, *m); err != nil {
		return nil, nil, err
	}

	r := Restock{
		ID:          s.newID(now),
		MedicineID:  m.ID,
		Packs:       p.Packs,
		StockBefore: before,
		StockAfter:  m.Stock,
		Note:        p.Note,
		CreatedAt:   now.UTC().Truncate(time.Second),
	}
	var note *string
	if p.Note != "" {
		note = &p.Note
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO restocks (id, medicine_id, packs, stock_before, stock_after, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.MedicineID, r.Packs.String(), r.StockBefore.String(), r.StockAfter.String(),
		note, r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, nil, fmt.Errorf("insert restock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return m, &r, nil
}

func (s *SQLiteStore) Restocks(ctx context.Context, id int64) ([]Restock, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, medicine_id, packs, stock_before, stock_after, note, created_at
		 FROM restocks WHERE medicine_id = ? ORDER BY id DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restock
	for rows.Next() {
		var r Restock
		var note sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.MedicineID, &r.Packs, &r.StockBefore, &r.StockAfter, &note, &createdAt); err != nil {
			return nil, err
		}
		if note.Valid {
			r.Note = note.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RestockCount returns how many purchases have been recorded.
func (s *SQLiteStore) RestockCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restocks`).Scan(&n)
	return n, err
}
