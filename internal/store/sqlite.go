package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/medstock/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Debug("store opened", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS medicines (
		id             INTEGER PRIMARY KEY,
		name           TEXT NOT NULL,
		specification  TEXT NOT NULL,
		stock          TEXT NOT NULL,
		dose_morning   TEXT NOT NULL DEFAULT '0',
		dose_noon      TEXT NOT NULL DEFAULT '0',
		dose_night     TEXT NOT NULL DEFAULT '0',
		administration TEXT NOT NULL DEFAULT 'oral',
		updated_at     INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(name);

	CREATE TABLE IF NOT EXISTS restocks (
		id           TEXT PRIMARY KEY,
		medicine_id  INTEGER NOT NULL REFERENCES medicines(id) ON DELETE CASCADE,
		packs        TEXT NOT NULL,
		stock_before TEXT NOT NULL,
		stock_after  TEXT NOT NULL,
		note         TEXT,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_restocks_medicine ON restocks(medicine_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

const medicineColumns = `id, name, specification, stock, dose_morning, dose_noon, dose_night, administration, updated_at`

func (s *SQLiteStore) Add(ctx context.Context, p AddParams) (*model.Medicine, error) {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	m := model.Medicine{
		ID:       now.UnixMilli(),
		Name:     p.Name,
		PackSize: p.PackSize,
		Stock:    p.Stock,
		Doses:    p.Doses,
		Route:    p.Route,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Ids double as creation timestamps but must stay unique and increasing.
	var maxID int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM medicines`).Scan(&maxID); err != nil {
		return nil, fmt.Errorf("read max id: %w", err)
	}
	if m.ID <= maxID {
		m.ID = maxID + 1
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := insertMedicine(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) Update(ctx context.Context, p UpdateParams) (*model.Medicine, error) {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := getMedicine(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.PackSize != nil {
		m.PackSize = *p.PackSize
	}
	if p.Stock != nil {
		m.Stock = *p.Stock
	}
	if p.Morning != nil {
		m.Doses.Morning = *p.Morning
	}
	if p.Noon != nil {
		m.Doses.Noon = *p.Noon
	}
	if p.Night != nil {
		m.Doses.Night = *p.Night
	}
	if p.Route != nil {
		m.Route = *p.Route
	}
	updated := now.UnixMilli()
	m.UpdatedAt = &updated

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := updateMedicine(ctx, tx, *m); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Medicine, error) {
	return getMedicine(ctx, s.db, id)
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines`
	var args []interface{}
	if p.Name != "" {
		query += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(p.Name)+"%")
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []model.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM restocks WHERE medicine_id = ?`, id); err != nil {
		return fmt.Errorf("delete restocks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertMedicine(ctx context.Context, db execer, m model.Medicine) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO medicines (`+medicineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.PackSize.String(), m.Stock.String(),
		m.Doses.Morning.String(), m.Doses.Noon.String(), m.Doses.Night.String(),
		m.Route.String(), nullableMillis(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func updateMedicine(ctx context.Context, db execer, m model.Medicine) error {
	_, err := db.ExecContext(ctx,
		`UPDATE medicines SET name = ?, specification = ?, stock = ?,
		        dose_morning = ?, dose_noon = ?, dose_night = ?, administration = ?, updated_at = ?
		 WHERE id = ?`,
		m.Name, m.PackSize.String(), m.Stock.String(),
		m.Doses.Morning.String(), m.Doses.Noon.String(), m.Doses.Night.String(),
		m.Route.String(), nullableMillis(m.UpdatedAt), m.ID)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	return nil
}

func getMedicine(ctx context.Context, db querier, id int64) (*model.Medicine, error) {
	row := db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	m, err := scanMedicine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMedicine(row scanner) (model.Medicine, error) {
	var m model.Medicine
	var route string
	var updatedAt sql.NullInt64

	err := row.Scan(
		&m.ID, &m.Name, &m.PackSize, &m.Stock,
		&m.Doses.Morning, &m.Doses.Noon, &m.Doses.Night,
		&route, &updatedAt,
	)
	if err != nil {
		return m, err
	}

	m.Route, err = model.ParseRoute(route)
	if err != nil {
		return m, fmt.Errorf("medicine %d: %w", m.ID, err)
	}
	if updatedAt.Valid {
		v := updatedAt.Int64
		m.UpdatedAt = &v
	}
	return m, nil
}

func nullableMillis(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
