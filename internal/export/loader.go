package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// loadTables is the closed set of COPY targets. COPY cannot take bound
// parameters, so the table name only ever comes from this set and the
// URI/role from validated configuration.
var loadTables = map[string]bool{
	"analytics.dim_book":   true,
	"analytics.fact_sales": true,
}

// Loader issues warehouse COPY commands against staged files.
type Loader struct {
	db      *sql.DB
	iamRole string
	region  string
}

// NewLoader creates a loader sharing the warehouse pool. iamRole is
// the authorization credential the COPY runs under.
func NewLoader(db *sql.DB, iamRole, region string) *Loader {
	return &Loader{db: db, iamRole: iamRole, region: region}
}

// Load bulk-copies a staged CSV into table. The staged file carries a
// header row, which is always skipped.
func (l *Loader) Load(ctx context.Context, table, s3URI string) error {
	if !loadTables[table] {
		return fmt.Errorf("refusing to COPY into unknown table %q", table)
	}
	if strings.ContainsAny(s3URI, "'\n") {
		return fmt.Errorf("malformed staged file uri %q", s3URI)
	}

	copyCmd := fmt.Sprintf(
		"COPY %s FROM '%s' IAM_ROLE '%s' CSV IGNOREHEADER 1 REGION '%s'",
		table, s3URI, l.iamRole, l.region,
	)
	if _, err := l.db.ExecContext(ctx, copyCmd); err != nil {
		return fmt.Errorf("copy into %s from %s: %w", table, s3URI, err)
	}

	var count int64
	if err := l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return fmt.Errorf("count rows in %s after load: %w", table, err)
	}

	slog.Info("[Export] Bulk load complete", "table", table, "uri", s3URI, "total_rows", count)
	return nil
}
