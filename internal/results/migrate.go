package results

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose dialect and base-FS configuration is process-global.
var migrateMu sync.Mutex

// runMigrations brings the ledger schema up to date via the embedded
// goose migrations.
func runMigrations(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
