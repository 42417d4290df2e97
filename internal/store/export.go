package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rcliao/medstock/internal/model"
)

// ExportAll returns every medicine in insertion order.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Medicine, error) {
	meds, err := s.List(ctx, ListParams{})
	if err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []model.Medicine{}
	}
	return meds, nil
}

// ImportResult reports what Import did.
type ImportResult struct {
	Imported int     `json:"imported"`
	Skipped  []int64 `json:"skipped,omitempty"`
}

// Import stores medicines from an export, keeping their ids. Medicines whose
// id already exists are skipped. Any invalid medicine aborts the whole import.
func (s *SQLiteStore) Import(ctx context.Context, meds []model.Medicine) (*ImportResult, error) {
	for _, m := range meds {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res := &ImportResult{}
	for _, m := range meds {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM medicines WHERE id = ?`, m.ID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists > 0 {
			slog.Warn("skipping existing medicine", "id", m.ID, "name", m.Name)
			res.Skipped = append(res.Skipped, m.ID)
			continue
		}
		if err := insertMedicine(ctx, tx, m); err != nil {
			return nil, err
		}
		res.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// browserEnvelope is the layout the browser tracker kept in local storage.
type browserEnvelope struct {
	State struct {
		Medicines []model.Medicine `json:"medicines"`
	} `json:"state"`
}

// DecodeMedicines parses either a JSON array of medicines or the browser
// tracker's {"state":{"medicines":[...]}} envelope.
func DecodeMedicines(data []byte) ([]model.Medicine, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	if data[0] == '[' {
		var meds []model.Medicine
		if err := json.Unmarshal(data, &meds); err != nil {
			return nil, fmt.Errorf("parse medicines: %w", err)
		}
		return meds, nil
	}

	var env browserEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse medicine storage: %w", err)
	}
	return env.State.Medicines, nil
}
