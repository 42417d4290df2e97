// Package model defines the medicine inventory data types.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The persisted layout stores plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrInvalidMedicine is wrapped by every validation failure.
var ErrInvalidMedicine = errors.New("invalid medicine")

// Medicine is one tracked medicine entry.
//
// ID doubles as the creation timestamp in milliseconds since the epoch.
// PackSize is the number of dosage units in one pack; Stock is counted in packs.
type Medicine struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	PackSize  decimal.Decimal `json:"specification"`
	Stock     decimal.Decimal `json:"stock"`
	Doses     Doses           `json:"doses"`
	Route     Route           `json:"administration"`
	UpdatedAt *int64          `json:"updatedAt,omitempty"`
}

// Doses holds the dosage units taken at each time slot.
type Doses struct {
	Morning decimal.Decimal `json:"morning"`
	Noon    decimal.Decimal `json:"noon"`
	Night   decimal.Decimal `json:"night"`
}

// At returns the dose for a time slot.
func (d Doses) At(slot TimeSlot) decimal.Decimal {
	switch slot {
	case Morning:
		return d.Morning
	case Noon:
		return d.Noon
	case Night:
		return d.Night
	}
	return decimal.Zero
}

// Total is the sum over all time slots.
func (d Doses) Total() decimal.Decimal {
	return d.Morning.Add(d.Noon).Add(d.Night)
}

// DailyUsage returns the dosage units consumed per day. May be zero.
func (m Medicine) DailyUsage() decimal.Decimal {
	return m.Doses.Total()
}

// TotalUnits is the stock expressed in dosage units.
func (m Medicine) TotalUnits() decimal.Decimal {
	return m.Stock.Mul(m.PackSize)
}

// BaselineMillis is the instant consumption is measured from: the last
// update, or the creation time when the record was never updated.
func (m Medicine) BaselineMillis() int64 {
	if m.UpdatedAt != nil {
		return *m.UpdatedAt
	}
	return m.ID
}

// Baseline returns BaselineMillis as a time.
func (m Medicine) Baseline() time.Time {
	return time.UnixMilli(m.BaselineMillis())
}

// CreatedAt returns the creation time encoded in the ID.
func (m Medicine) CreatedAt() time.Time {
	return time.UnixMilli(m.ID)
}

// Validate rejects records that cannot be projected.
func (m Medicine) Validate() error {
	var problems []string
	if m.ID <= 0 {
		problems = append(problems, fmt.Sprintf("id must be positive, got %d", m.ID))
	}
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name cannot be empty")
	}
	if !m.PackSize.IsPositive() {
		problems = append(problems, fmt.Sprintf("pack size must be positive, got %s", m.PackSize))
	}
	if m.Stock.IsNegative() {
		problems = append(problems, fmt.Sprintf("stock cannot be negative, got %s", m.Stock))
	}
	for _, slot := range TimeSlots {
		if d := m.Doses.At(slot); d.IsNegative() {
			problems = append(problems, fmt.Sprintf("%s dose cannot be negative, got %s", slot, d))
		}
	}
	if !m.Route.Valid() {
		problems = append(problems, fmt.Sprintf("unknown administration route %d", m.Route))
	}
	if m.UpdatedAt != nil && *m.UpdatedAt <= 0 {
		problems = append(problems, fmt.Sprintf("updatedAt must be positive, got %d", *m.UpdatedAt))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w %d (%s): %s", ErrInvalidMedicine, m.ID, m.Name, strings.Join(problems, "; "))
	}
	return nil
}
