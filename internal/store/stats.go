package store

import (
	"context"
	"os"

	"github.com/shopspring/decimal"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string          `json:"db_path"`
	DBSizeBytes int64           `json:"db_size_bytes"`
	Medicines   int             `json:"medicines"`
	Restocks    int             `json:"restocks"`
	DailyUsage  decimal.Decimal `json:"daily_usage"`
	ByRoute     []RouteStats    `json:"by_route"`
}

// RouteStats holds per-route counts.
type RouteStats struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, DailyUsage: decimal.Zero}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	meds, err := s.List(ctx, ListParams{})
	if err != nil {
		return st, err
	}
	st.Medicines = len(meds)
	for _, m := range meds {
		st.DailyUsage = st.DailyUsage.Add(m.DailyUsage())
	}

	if st.Restocks, err = s.RestockCount(ctx); err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT administration, COUNT(*) AS cnt
		FROM medicines
		GROUP BY administration ORDER BY cnt DESC, administration`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var rs RouteStats
		if err := rows.Scan(&rs.Route, &rs.Count); err != nil {
			return st, err
		}
		st.ByRoute = append(st.ByRoute, rs)
	}

	return st, rows.Err()
}
