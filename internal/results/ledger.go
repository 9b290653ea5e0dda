package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Entry is one recorded results row, mirroring the columns the tournament
// staff export.
type Entry struct {
	ID              string    `db:"id"`
	RecordedAt      time.Time `db:"recorded_at"`
	MessageLink     string    `db:"message_link"`
	Poster          string    `db:"poster"`
	Bracket         string    `db:"bracket"`
	Player1ID       string    `db:"player1_id"`
	Player1Name     string    `db:"player1_name"`
	Player1Score    *int      `db:"player1_score"`
	Player2ID       string    `db:"player2_id"`
	Player2Name     string    `db:"player2_name"`
	Player2Score    *int      `db:"player2_score"`
	MapDraft        string    `db:"map_draft"`
	CivDraft        string    `db:"civ_draft"`
	ReplaysLink     string    `db:"replays_link"`
	MessageContents string    `db:"message_contents"`
}

// Ledger persists results entries and the set of known replay objects in a
// local sqlite database.
type Ledger struct {
	db *sqlx.DB
}

// OpenLedger connects to (or creates) the sqlite database at path and
// runs any pending schema migrations.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("connect ledger: %w", err)
	}
	if err := runMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Append stores a results entry, assigning an ID when none is set.
func (l *Ledger) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	query := `INSERT INTO entries (id, recorded_at, message_link, poster, bracket,
		player1_id, player1_name, player1_score, player2_id, player2_name, player2_score,
		map_draft, civ_draft, replays_link, message_contents)
		VALUES (:id, :recorded_at, :message_link, :poster, :bracket,
		:player1_id, :player1_name, :player1_score, :player2_id, :player2_name, :player2_score,
		:map_draft, :civ_draft, :replays_link, :message_contents)`
	_, err := l.db.NamedExecContext(ctx, query, entry)
	return err
}

// CountEntries returns the number of recorded results rows.
func (l *Ledger) CountEntries(ctx context.Context) (int, error) {
	var count int
	err := l.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM entries`)
	return count, err
}

// RecordReplay marks a storage key as known. It reports whether the key
// was newly inserted; re-recording an existing key is a no-op.
func (l *Ledger) RecordReplay(ctx context.Context, storageKey string) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO replays (storage_key, first_seen) VALUES ($1, $2)
		 ON CONFLICT (storage_key) DO NOTHING`,
		storageKey, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ForgetReplay removes a storage key from the known set.
func (l *Ledger) ForgetReplay(ctx context.Context, storageKey string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM replays WHERE storage_key = $1`, storageKey)
	return err
}

// CountReplays returns the number of known replay objects.
func (l *Ledger) CountReplays(ctx context.Context) (int, error) {
	var count int
	err := l.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM replays`)
	return count, err
}
