package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validMedicine() Medicine {
	return Medicine{
		ID:       1_700_000_000_000,
		Name:     "aspirin",
		PackSize: decimal.NewFromInt(20),
		Stock:    decimal.NewFromInt(2),
		Doses: Doses{
			Morning: decimal.NewFromInt(1),
			Noon:    decimal.Zero,
			Night:   decimal.NewFromInt(1),
		},
		Route: Oral,
	}
}

func TestBaselineFallsBackToID(t *testing.T) {
	m := validMedicine()
	if m.BaselineMillis() != m.ID {
		t.Errorf("expected baseline %d, got %d", m.ID, m.BaselineMillis())
	}

	updated := m.ID + 86_400_000
	m.UpdatedAt = &updated
	if m.BaselineMillis() != updated {
		t.Errorf("expected baseline %d, got %d", updated, m.BaselineMillis())
	}
	if !m.Baseline().Equal(m.CreatedAt().Add(24 * time.Hour)) {
		t.Errorf("baseline should be one day after creation, got %v", m.Baseline())
	}
}

func TestDosesAt(t *testing.T) {
	d := Doses{
		Morning: decimal.NewFromInt(1),
		Noon:    decimal.NewFromInt(2),
		Night:   decimal.NewFromInt(3),
	}
	want := map[TimeSlot]int64{Morning: 1, Noon: 2, Night: 3}
	for slot, w := range want {
		if !d.At(slot).Equal(decimal.NewFromInt(w)) {
			t.Errorf("%s: expected %d, got %s", slot, w, d.At(slot))
		}
	}
	if !d.Total().Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected total 6, got %s", d.Total())
	}
}

func TestValidate(t *testing.T) {
	if err := validMedicine().Validate(); err != nil {
		t.Fatalf("expected valid medicine, got %v", err)
	}

	zero := int64(0)
	tests := []struct {
		name   string
		mutate func(*Medicine)
		want   string
	}{
		{"zero id", func(m *Medicine) { m.ID = 0 }, "id must be positive"},
		{"empty name", func(m *Medicine) { m.Name = "  " }, "name cannot be empty"},
		{"zero pack size", func(m *Medicine) { m.PackSize = decimal.Zero }, "pack size must be positive"},
		{"negative stock", func(m *Medicine) { m.Stock = decimal.NewFromInt(-1) }, "stock cannot be negative"},
		{"negative dose", func(m *Medicine) { m.Doses.Noon = decimal.NewFromFloat(-0.5) }, "noon dose cannot be negative"},
		{"bad route", func(m *Medicine) { m.Route = Route(7) }, "unknown administration route"},
		{"zero updatedAt", func(m *Medicine) { m.UpdatedAt = &zero }, "updatedAt must be positive"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := validMedicine()
			tc.mutate(&m)
			err := m.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidMedicine) {
				t.Errorf("expected ErrInvalidMedicine, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestZeroStockIsValid(t *testing.T) {
	m := validMedicine()
	m.Stock = decimal.Zero
	if err := m.Validate(); err != nil {
		t.Errorf("zero stock should be valid: %v", err)
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want Route
	}{
		{"oral", Oral},
		{"Injectable", Injectable},
		{" suppository ", Suppository},
		{"口服", Oral},
		{"针剂", Injectable},
		{"塞剂", Suppository},
	}
	for _, tc := range tests {
		got, err := ParseRoute(tc.in)
		if err != nil {
			t.Errorf("ParseRoute(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRoute(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseRoute("inhaled"); err == nil {
		t.Error("expected error for unknown route")
	}
}

func TestJSONPersistedLayout(t *testing.T) {
	// Shape written by the browser tracker.
	raw := `{"id":1700000000000,"name":"维生素C","specification":20,"stock":1.5,
		"doses":{"morning":1,"noon":0,"night":0.5},"administration":"口服","updatedAt":1700000100000}`

	var m Medicine
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Route != Oral {
		t.Errorf("expected oral, got %s", m.Route)
	}
	if !m.Stock.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected stock 1.5, got %s", m.Stock)
	}
	if m.UpdatedAt == nil || *m.UpdatedAt != 1700000100000 {
		t.Errorf("expected updatedAt to be set, got %v", m.UpdatedAt)
	}
	if !m.DailyUsage().Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected daily usage 1.5, got %s", m.DailyUsage())
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"specification":20`, `"stock":1.5`, `"administration":"oral"`, `"updatedAt":1700000100000`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestJSONOmitsMissingUpdatedAt(t *testing.T) {
	b, err := json.Marshal(validMedicine())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "updatedAt") {
		t.Errorf("expected updatedAt to be omitted, got %s", b)
	}
}
