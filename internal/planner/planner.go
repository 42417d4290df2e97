// Package planner applies the projection engine across a snapshot of
// medicines: ordering for display, the replenishment shortlist, and daily
// usage totals.
package planner

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rcliao/medstock/internal/model"
	"github.com/rcliao/medstock/internal/projection"
)

// SortField selects the key medicines are ordered by.
type SortField string

const (
	ByRemainingDays SortField = "remaining-days"
	ByReplenishDate SortField = "replenish-date"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortField accepts the CLI spellings of a sort field.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remaining-days", "remainingdays", "days", "":
		return ByRemainingDays, nil
	case "replenish-date", "replenishdate", "date":
		return ByReplenishDate, nil
	}
	return "", fmt.Errorf("invalid sort field %q (valid: remaining-days, replenish-date)", s)
}

// ParseDirection accepts asc/desc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort direction %q (valid: asc, desc)", s)
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// RecordError reports a medicine that could not be projected.
type RecordError struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (e RecordError) Error() string {
	return fmt.Sprintf("medicine %d (%s): %v", e.ID, e.Name, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

func (e RecordError) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `{"id":%d,"name":%q,"error":%q}`, e.ID, e.Name, e.Err.Error()), nil
}

func recordError(m model.Medicine, err error) RecordError {
	slog.Warn("skipping medicine", "id", m.ID, "name", m.Name, "err", err)
	return RecordError{ID: m.ID, Name: m.Name, Err: err}
}

// Row is a medicine with its projection as of now.
type Row struct {
	Medicine   model.Medicine        `json:"medicine"`
	Projection projection.Projection `json:"projection"`
}

// Sort projects every medicine as of now and orders the result by field.
// Keys are computed once per medicine. Equal keys keep their input order in
// both directions. Medicines that never deplete sort after all others.
func Sort(meds []model.Medicine, field SortField, dir Direction, now time.Time) ([]Row, []RecordError) {
	rows, errs := project(meds, now)

	keys := make([]int64, len(rows))
	for i, r := range rows {
		keys[i] = sortKey(r.Projection, field)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if dir == Descending {
			return ka > kb
		}
		return ka < kb
	})

	sorted := make([]Row, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	return sorted, errs
}

func project(meds []model.Medicine, now time.Time) ([]Row, []RecordError) {
	rows := make([]Row, 0, len(meds))
	var errs []RecordError
	for _, m := range meds {
		p, err := projection.Expiry(m, now)
		if err != nil {
			errs = append(errs, recordError(m, err))
			continue
		}
		rows = append(rows, Row{Medicine: m, Projection: p})
	}
	return rows, errs
}

func sortKey(p projection.Projection, field SortField) int64 {
	if p.Unbounded {
		return int64(projection.UnboundedDays)
	}
	if field == ByReplenishDate {
		return p.ExpiryDate.UnixMilli()
	}
	return int64(p.RemainingDays)
}

// WindowDate is the target date shifted by the days-to-maintain offset.
func WindowDate(target time.Time, offsetDays int) time.Time {
	return projection.AddDays(target, int64(offsetDays))
}

// NeedingReplenishment returns the medicines whose supply is already
// exhausted at target+offsetDays, in input order.
func NeedingReplenishment(meds []model.Medicine, target time.Time, offsetDays int) ([]model.Medicine, []RecordError, error) {
	if offsetDays < 0 {
		return nil, nil, fmt.Errorf("%w: got %d", projection.ErrNegativeOffset, offsetDays)
	}
	window := WindowDate(target, offsetDays)

	var out []model.Medicine
	var errs []RecordError
	for _, m := range meds {
		r, err := projection.Remaining(m, window)
		if err != nil {
			errs = append(errs, recordError(m, err))
			continue
		}
		if r.Unbounded {
			continue
		}
		if !projection.AddDays(window, int64(r.Days)).After(window) {
			out = append(out, m)
		}
	}
	return out, errs, nil
}
