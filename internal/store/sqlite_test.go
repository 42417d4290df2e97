package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcliao/medstock/internal/model"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr[T any](v T) *T { return &v }

func addParams(name string, now time.Time) AddParams {
	return AddParams{
		Name:     name,
		PackSize: dec("20"),
		Stock:    dec("2"),
		Doses:    model.Doses{Morning: dec("2"), Noon: dec("2"), Night: dec("2")},
		Route:    model.Oral,
		Now:      now,
	}
}

func TestAddAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, err := s.Add(ctx, addParams("aspirin", t0))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.ID != t0.UnixMilli() {
		t.Errorf("expected id %d, got %d", t0.UnixMilli(), m.ID)
	}
	if m.UpdatedAt != nil {
		t.Errorf("expected no updatedAt on a new medicine, got %d", *m.UpdatedAt)
	}

	got, err := s.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "aspirin" {
		t.Errorf("expected 'aspirin', got %q", got.Name)
	}
	if !got.PackSize.Equal(dec("20")) || !got.Stock.Equal(dec("2")) {
		t.Errorf("expected 20/2, got %s/%s", got.PackSize, got.Stock)
	}
	if !got.DailyUsage().Equal(dec("6")) {
		t.Errorf("expected daily usage 6, got %s", got.DailyUsage())
	}
	if got.Route != model.Oral {
		t.Errorf("expected oral, got %s", got.Route)
	}
}

func TestAddKeepsIDsIncreasing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Add(ctx, addParams("a", t0))
	b, err := s.Add(ctx, addParams("b", t0))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if b.ID != a.ID+1 {
		t.Errorf("expected id %d, got %d", a.ID+1, b.ID)
	}

	// A clock that went backwards still yields a larger id.
	c, _ := s.Add(ctx, addParams("c", t0.Add(-time.Hour)))
	if c.ID <= b.ID {
		t.Errorf("expected id above %d, got %d", b.ID, c.ID)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := addParams("bad", t0)
	p.PackSize = decimal.Zero
	_, err := s.Add(ctx, p)
	if !errors.Is(err, model.ErrInvalidMedicine) {
		t.Fatalf("expected ErrInvalidMedicine, got %v", err)
	}

	list, _ := s.List(ctx, ListParams{})
	if len(list) != 0 {
		t.Errorf("expected nothing stored, got %d", len(list))
	}
}

func TestUpdateMovesBaseline(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, _ := s.Add(ctx, addParams("aspirin", t0))
	later := t0.Add(72 * time.Hour)

	up, err := s.Update(ctx, UpdateParams{
		ID:    m.ID,
		Stock: ptr(dec("3.5")),
		Night: ptr(dec("0")),
		Route: ptr(model.Suppository),
		Now:   later,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.UpdatedAt == nil || *up.UpdatedAt != later.UnixMilli() {
		t.Errorf("expected updatedAt %d, got %v", later.UnixMilli(), up.UpdatedAt)
	}
	if !up.Baseline().Equal(later) {
		t.Errorf("expected baseline %v, got %v", later, up.Baseline())
	}

	got, _ := s.Get(ctx, m.ID)
	if !got.Stock.Equal(dec("3.5")) {
		t.Errorf("expected stock 3.5, got %s", got.Stock)
	}
	if !got.DailyUsage().Equal(dec("4")) {
		t.Errorf("expected daily usage 4, got %s", got.DailyUsage())
	}
	if got.Name != "aspirin" {
		t.Errorf("expected name to be kept, got %q", got.Name)
	}
	if got.Route != model.Suppository {
		t.Errorf("expected suppository, got %s", got.Route)
	}
	if got.UpdatedAt == nil || *got.UpdatedAt != later.UnixMilli() {
		t.Errorf("expected persisted updatedAt, got %v", got.UpdatedAt)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, _ := s.Add(ctx, addParams("aspirin", t0))
	_, err := s.Update(ctx, UpdateParams{ID: m.ID, Stock: ptr(dec("-1")), Now: t0})
	if !errors.Is(err, model.ErrInvalidMedicine) {
		t.Fatalf("expected ErrInvalidMedicine, got %v", err)
	}

	got, _ := s.Get(ctx, m.ID)
	if !got.Stock.Equal(dec("2")) || got.UpdatedAt != nil {
		t.Errorf("expected medicine unchanged, got %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, addParams("Vitamin C", t0))
	s.Add(ctx, addParams("aspirin", t0.Add(time.Minute)))
	s.Add(ctx, addParams("vitamin D3", t0.Add(2*time.Minute)))

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	if all[0].Name != "Vitamin C" || all[2].Name != "vitamin D3" {
		t.Errorf("expected insertion order, got %q..%q", all[0].Name, all[2].Name)
	}

	vit, _ := s.List(ctx, ListParams{Name: "VITAMIN"})
	if len(vit) != 2 {
		t.Errorf("expected 2 vitamins, got %d", len(vit))
	}

	none, _ := s.List(ctx, ListParams{Name: "%"})
	if len(none) != 0 {
		t.Errorf("expected literal %% match to find nothing, got %d", len(none))
	}
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, _ := s.Add(ctx, addParams("aspirin", t0))
	s.Restock(ctx, RestockParams{ID: m.ID, Packs: dec("1"), Now: t0.Add(time.Hour)})

	if err := s.Rm(ctx, m.ID); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := s.Get(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after rm, got %v", err)
	}
	if n, _ := s.RestockCount(ctx); n != 0 {
		t.Errorf("expected restocks to be removed, got %d", n)
	}

	if err := s.Rm(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second rm, got %v", err)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	m, _ := s.Add(ctx, addParams("aspirin", t0))
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Name != "aspirin" {
		t.Errorf("expected 'aspirin', got %q", got.Name)
	}
}
