// Package cli implements the medstock CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/planner"
	"github.com/rcliao/medstock/internal/store"
)

var (
	dbPath     string
	formatFlag string
	asOfFlag   string
	logLevel   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "medstock",
	Short: "Track medicine stock and plan refills",
	Long:  "A tiny CLI for tracking medicine supply. Records doses per day, projects when each medicine runs out and how many packs to buy.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		switch formatFlag {
		case "json", "text":
		default:
			return fmt.Errorf("invalid format %q (valid: json, text)", formatFlag)
		}
		if _, err := now(); err != nil {
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MEDSTOCK_DB or ~/.medstock/medstock.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&asOfFlag, "as-of", "", "Evaluate as of this time (RFC3339 or YYYY-MM-DD) instead of now")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $MEDSTOCK_LOG_LEVEL or warn)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("MEDSTOCK_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".medstock", "medstock.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func setupLogging() {
	lvl := logLevel
	if lvl == "" {
		lvl = os.Getenv("MEDSTOCK_LOG_LEVEL")
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(lvl)})
	slog.SetDefault(slog.New(h))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// now is the reference instant for every projection.
func now() (time.Time, error) {
	if asOfFlag == "" {
		return time.Now(), nil
	}
	return parseInstant(asOfFlag)
}

// parseInstant accepts an RFC3339 instant or a local calendar date.
func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339 or YYYY-MM-DD)", s)
}

func mustNow() time.Time {
	t, err := now()
	if err != nil {
		exitErr("as-of", err)
	}
	return t
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		exitErr("parse id", fmt.Errorf("invalid medicine id %q", s))
	}
	return id
}

func parseDecimal(name, s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		exitErr("parse "+name, fmt.Errorf("invalid number %q", s))
	}
	return d
}

func textOutput() bool { return formatFlag == "text" }

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// reportSkipped tells text readers which medicines were left out.
// JSON output carries them in its errors field instead.
func reportSkipped(errs []planner.RecordError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "skipped %d invalid medicine(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateOnly)
}
