// Package migrations holds the embedded schema for the SQL-backed stores.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// upMigrations returns the .up.sql files under dir in lexical order.
func upMigrations(dir string) ([]string, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	statements := make([]string, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		statements = append(statements, string(body))
	}
	return statements, nil
}

// RunSQLiteMigrations applies every SQLite migration. Each file is idempotent.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	statements, err := upMigrations("sqlite")
	if err != nil {
		return err
	}
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute sqlite migration %d: %w", i+1, err)
		}
	}
	return nil
}
