// Package projection derives remaining supply, depletion dates and
// replenishment suggestions for a single medicine.
//
// Every function is pure: the reference instant is always passed in.
// Day arithmetic is done on millisecond instants with fixed 24h days.
package projection

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcliao/medstock/internal/model"
)

// DayMillis is the length of one day in milliseconds.
const DayMillis int64 = 86_400_000

// ErrNegativeOffset is returned when the days-to-maintain offset is negative.
var ErrNegativeOffset = errors.New("offset days cannot be negative")

// Days is a whole number of days. UnboundedDays marks a medicine that never depletes.
type Days int64

// Units is a whole number of dosage units. UnboundedUnits marks a medicine that never depletes.
type Units int64

const (
	UnboundedDays  Days  = math.MaxInt64
	UnboundedUnits Units = math.MaxInt64
)

func (d Days) Unbounded() bool  { return d == UnboundedDays }
func (u Units) Unbounded() bool { return u == UnboundedUnits }

func (d Days) String() string {
	if d.Unbounded() {
		return "unbounded"
	}
	return strconv.FormatInt(int64(d), 10)
}

func (u Units) String() string {
	if u.Unbounded() {
		return "unbounded"
	}
	return strconv.FormatInt(int64(u), 10)
}

func (d Days) MarshalJSON() ([]byte, error) {
	if d.Unbounded() {
		return []byte(`"unbounded"`), nil
	}
	return []byte(d.String()), nil
}

func (u Units) MarshalJSON() ([]byte, error) {
	if u.Unbounded() {
		return []byte(`"unbounded"`), nil
	}
	return []byte(u.String()), nil
}

// Supply is what is left at a reference instant.
type Supply struct {
	Days      Days  `json:"days"`
	Quantity  Units `json:"quantity"`
	Unbounded bool  `json:"unbounded,omitempty"`
}

// Projection is the at-a-glance view of one medicine as of now.
// ExpiryDate is zero when the medicine never depletes.
type Projection struct {
	RemainingDays     Days      `json:"remaining_days"`
	RemainingQuantity Units     `json:"remaining_quantity"`
	ExpiryDate        time.Time `json:"expiry_date,omitzero"`
	Unbounded         bool      `json:"unbounded,omitempty"`
}

// Suggestion is the replenishment needed to keep supply through a window.
type Suggestion struct {
	Packs             int64           `json:"packs"`
	RemainingAtTarget decimal.Decimal `json:"remaining_at_target"`
	RequiredQuantity  decimal.Decimal `json:"required_quantity"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	NewExpiryDate     time.Time       `json:"new_expiry_date"`
}

// ElapsedDays returns the whole days between two millisecond instants,
// clamped to zero when to precedes from.
func ElapsedDays(fromMillis, toMillis int64) int64 {
	diff := toMillis - fromMillis
	if diff <= 0 {
		return 0
	}
	return diff / DayMillis
}

// Instants are kept a day inside the years 0 through 9999, the range
// time.Time can render as RFC 3339 in any zone.
var (
	minMillis = time.Date(0, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxMillis = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC).UnixMilli()
)

// AddDays shifts t by n fixed-length days, saturating at the ends of the
// representable range instead of overflowing.
func AddDays(t time.Time, n int64) time.Time {
	ms := min(max(t.UnixMilli(), minMillis), maxMillis)
	switch {
	case n > (maxMillis-ms)/DayMillis:
		return time.UnixMilli(maxMillis)
	case n < (minMillis-ms)/DayMillis:
		return time.UnixMilli(minMillis)
	}
	return time.UnixMilli(ms + n*DayMillis)
}

// Remaining computes the supply left at ref. Consumption runs from the
// record's baseline; a ref before the baseline counts as zero elapsed days.
func Remaining(m model.Medicine, ref time.Time) (Supply, error) {
	if err := m.Validate(); err != nil {
		return Supply{}, err
	}
	usage := m.DailyUsage()
	if usage.IsZero() {
		return Supply{Days: UnboundedDays, Quantity: UnboundedUnits, Unbounded: true}, nil
	}

	left := unitsLeft(m, ref)
	if !left.IsPositive() {
		return Supply{}, nil
	}
	return Supply{
		Days:     Days(floorDiv(left, usage)),
		Quantity: Units(toCount(left.Floor())),
	}, nil
}

// UnitsLeft returns the exact dosage units left at ref, never below zero.
// A medicine with no daily usage keeps its whole stock.
func UnitsLeft(m model.Medicine, ref time.Time) (decimal.Decimal, error) {
	if err := m.Validate(); err != nil {
		return decimal.Zero, err
	}
	return unitsLeft(m, ref), nil
}

func unitsLeft(m model.Medicine, ref time.Time) decimal.Decimal {
	passed := ElapsedDays(m.BaselineMillis(), ref.UnixMilli())
	consumed := m.DailyUsage().Mul(decimal.NewFromInt(passed))
	return decimal.Max(decimal.Zero, m.TotalUnits().Sub(consumed))
}

// Expiry projects the medicine as of now. The expiry date is the baseline
// plus the whole days the recorded stock lasts, so an exhausted medicine
// reports the day it actually ran out.
func Expiry(m model.Medicine, now time.Time) (Projection, error) {
	r, err := Remaining(m, now)
	if err != nil {
		return Projection{}, err
	}
	if r.Unbounded {
		return Projection{
			RemainingDays:     UnboundedDays,
			RemainingQuantity: UnboundedUnits,
			Unbounded:         true,
		}, nil
	}
	lasts := DaysCovered(m.TotalUnits(), m.DailyUsage())
	return Projection{
		RemainingDays:     r.Days,
		RemainingQuantity: r.Quantity,
		ExpiryDate:        AddDays(m.Baseline(), lasts),
	}, nil
}

// Suggest returns the minimum whole packs to buy so that the supply left at
// target covers offsetDays of usage.
func Suggest(m model.Medicine, target time.Time, offsetDays int) (Suggestion, error) {
	if offsetDays < 0 {
		return Suggestion{}, fmt.Errorf("%w: got %d", ErrNegativeOffset, offsetDays)
	}
	r, err := Remaining(m, target)
	if err != nil {
		return Suggestion{}, err
	}
	if r.Unbounded {
		return Suggestion{
			RemainingAtTarget: decimal.Zero,
			RequiredQuantity:  decimal.Zero,
			TotalQuantity:     decimal.Zero,
			NewExpiryDate:     target,
		}, nil
	}

	usage := m.DailyUsage()
	have := decimal.NewFromInt(int64(r.Quantity))
	required := decimal.NewFromInt(int64(offsetDays)).Mul(usage)
	needed := decimal.Max(decimal.Zero, required.Sub(have))
	packs := ceilDiv(needed, m.PackSize)
	total := have.Add(decimal.NewFromInt(packs).Mul(m.PackSize))

	return Suggestion{
		Packs:             packs,
		RemainingAtTarget: have,
		RequiredQuantity:  required,
		TotalQuantity:     total,
		NewExpiryDate:     AddDays(target, DaysCovered(total, usage)),
	}, nil
}

// DaysCovered is the whole days that units last at the given daily usage.
// usage must be positive.
func DaysCovered(units, usage decimal.Decimal) int64 {
	return floorDiv(units, usage)
}

// floorDiv divides exactly, rounding toward negative infinity. b must be positive.
func floorDiv(a, b decimal.Decimal) int64 {
	q, r := a.QuoRem(b, 0)
	if r.IsNegative() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return toCount(q)
}

// ceilDiv divides exactly, rounding toward positive infinity. b must be positive.
func ceilDiv(a, b decimal.Decimal) int64 {
	q, r := a.QuoRem(b, 0)
	if r.IsPositive() {
		q = q.Add(decimal.NewFromInt(1))
	}
	return toCount(q)
}

// maxCount stays one below the unbounded sentinels.
var maxCount = decimal.NewFromInt(math.MaxInt64 - 1)

// toCount converts a non-negative integral decimal to int64, saturating at maxCount.
func toCount(d decimal.Decimal) int64 {
	if d.GreaterThan(maxCount) {
		return maxCount.IntPart()
	}
	return d.IntPart()
}
