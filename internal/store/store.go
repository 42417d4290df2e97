// Package store provides the medicine storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcliao/medstock/internal/model"
)

// ErrNotFound is returned when no medicine has the requested id.
var ErrNotFound = errors.New("medicine not found")

// AddParams holds parameters for adding a medicine.
type AddParams struct {
	Name     string
	PackSize decimal.Decimal
	Stock    decimal.Decimal
	Doses    model.Doses
	Route    model.Route
	Now      time.Time // creation time, becomes the id
}

// UpdateParams holds parameters for editing a medicine.
// Nil fields keep their current value.
type UpdateParams struct {
	ID       int64
	Name     *string
	PackSize *decimal.Decimal
	Stock    *decimal.Decimal
	Morning  *decimal.Decimal
	Noon     *decimal.Decimal
	Night    *decimal.Decimal
	Route    *model.Route
	Now      time.Time // becomes updatedAt
}

// ListParams holds parameters for listing medicines.
type ListParams struct {
	Name string // case-insensitive substring match
}

// RestockParams holds parameters for recording a purchase.
type RestockParams struct {
	ID    int64
	Packs decimal.Decimal
	Note  string
	Now   time.Time
}

// Restock is one recorded purchase.
type Restock struct {
	ID          string          `json:"id"`
	MedicineID  int64           `json:"medicine_id"`
	Packs       decimal.Decimal `json:"packs"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Store defines the medicine storage interface.
type Store interface {
	// Add stores a new medicine. The id is the creation time in milliseconds.
	Add(ctx context.Context, p AddParams) (*model.Medicine, error)

	// Update edits a medicine and moves its consumption baseline to p.Now.
	Update(ctx context.Context, p UpdateParams) (*model.Medicine, error)

	// Get retrieves a medicine by id.
	Get(ctx context.Context, id int64) (*model.Medicine, error)

	// List returns medicines in insertion order.
	List(ctx context.Context, p ListParams) ([]model.Medicine, error)

	// Rm deletes a medicine and its restock history.
	Rm(ctx context.Context, id int64) error

	// Restock adds packs on top of what is left now and re-baselines the medicine.
	Restock(ctx context.Context, p RestockParams) (*model.Medicine, *Restock, error)

	// Restocks lists the purchases recorded for a medicine, newest first.
	Restocks(ctx context.Context, id int64) ([]Restock, error)

	// ExportAll returns every medicine in insertion order.
	ExportAll(ctx context.Context) ([]model.Medicine, error)

	// Import stores exported medicines, keeping their ids.
	Import(ctx context.Context, meds []model.Medicine) (*ImportResult, error)

	// Stats summarizes the database at dbPath.
	Stats(ctx context.Context, dbPath string) (*Stats, error)

	// Close closes the store.
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
