package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcliao/medstock/internal/model"
	"github.com/rcliao/medstock/internal/projection"
)

// PlanEntry is one medicine on the replenishment shortlist.
// CurrentExpiry is how long the recorded stock lasts counted from now,
// nil when the medicine has no stock.
type PlanEntry struct {
	Medicine      model.Medicine        `json:"medicine"`
	AtTarget      projection.Supply     `json:"at_target"`
	Suggestion    projection.Suggestion `json:"suggestion"`
	CurrentExpiry *time.Time            `json:"current_expiry,omitempty"`
}

// PlanResult is the replenishment shortlist for a target date. Errors lists
// the medicines left out because they could not be projected.
type PlanResult struct {
	Target     time.Time     `json:"target"`
	OffsetDays int           `json:"offset_days"`
	Window     time.Time     `json:"window"`
	Entries    []PlanEntry   `json:"entries"`
	Errors     []RecordError `json:"errors,omitempty"`
}

// Plan filters the medicines that run out by the window and annotates each
// with what is left at target and how many packs to buy.
func Plan(meds []model.Medicine, target time.Time, offsetDays int, now time.Time) (*PlanResult, []RecordError, error) {
	due, errs, err := NeedingReplenishment(meds, target, offsetDays)
	if err != nil {
		return nil, nil, err
	}

	res := &PlanResult{
		Target:     target,
		OffsetDays: offsetDays,
		Window:     WindowDate(target, offsetDays),
		Entries:    make([]PlanEntry, 0, len(due)),
	}
	for _, m := range due {
		at, err := projection.Remaining(m, target)
		if err != nil {
			errs = append(errs, recordError(m, err))
			continue
		}
		s, err := projection.Suggest(m, target, offsetDays)
		if err != nil {
			errs = append(errs, recordError(m, err))
			continue
		}
		entry := PlanEntry{Medicine: m, AtTarget: at, Suggestion: s}
		if m.Stock.IsPositive() {
			lasts := projection.DaysCovered(m.TotalUnits(), m.DailyUsage())
			exp := projection.AddDays(now, lasts)
			entry.CurrentExpiry = &exp
		}
		res.Entries = append(res.Entries, entry)
	}
	res.Errors = errs
	return res, errs, nil
}

// SlotDose is one medicine's dose at a time slot.
type SlotDose struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Dose decimal.Decimal `json:"dose"`
}

// SlotUsage lists the doses due at one time slot.
type SlotUsage struct {
	Slot  model.TimeSlot  `json:"slot"`
	Doses []SlotDose      `json:"doses"`
	Total decimal.Decimal `json:"total"`
}

// UsageSummary is the daily intake across all medicines.
type UsageSummary struct {
	Slots      []SlotUsage     `json:"slots"`
	DailyTotal decimal.Decimal `json:"daily_total"`
	Errors     []RecordError   `json:"errors,omitempty"`
}

// Usage totals the doses per time slot. Medicines with a zero dose at a
// slot are left out of that slot's list.
func Usage(meds []model.Medicine) (UsageSummary, []RecordError) {
	var errs []RecordError
	valid := make([]model.Medicine, 0, len(meds))
	for _, m := range meds {
		if err := m.Validate(); err != nil {
			errs = append(errs, recordError(m, err))
			continue
		}
		valid = append(valid, m)
	}

	sum := UsageSummary{DailyTotal: decimal.Zero}
	for _, slot := range model.TimeSlots {
		su := SlotUsage{Slot: slot, Doses: []SlotDose{}, Total: decimal.Zero}
		for _, m := range valid {
			d := m.Doses.At(slot)
			if !d.IsPositive() {
				continue
			}
			su.Doses = append(su.Doses, SlotDose{ID: m.ID, Name: m.Name, Dose: d})
			su.Total = su.Total.Add(d)
		}
		sum.Slots = append(sum.Slots, su)
		sum.DailyTotal = sum.DailyTotal.Add(su.Total)
	}
	sum.Errors = errs
	return sum, errs
}
