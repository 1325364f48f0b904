package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-hoops/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, opts...)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// normalizeDBURL adds disable_prepared_binary_result=yes for poolers that
// cannot handle binary results, unless the DSN already sets the flag.
func normalizeDBURL(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	if query.Has("disable_prepared_binary_result") {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL understands both URL and key=value DSNs.
func dbNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}
	for _, token := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			if name = strings.Trim(name, `"'`); name != "" {
				return name
			}
		}
	}
	return ""
}

// formatDBQueryForTrace collapses whitespace and caps the statement length.
func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
