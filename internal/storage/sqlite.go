package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for trackers, preferences, and
// price history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "shopwatch.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Trackers ---

const trackerColumns = `id, user_id, product_name, target_price, platforms, created_at, last_checked, last_price, is_active, track_mode`

// SaveTracker inserts a new tracker. A second active tracker for the same
// (user, product) violates the unique index; callers update instead.
func (s *Store) SaveTracker(t Tracker) error {
	mode := t.TrackMode
	if mode == "" {
		mode = "below"
	}
	platforms := t.Platforms
	if platforms == "" {
		platforms = "[]"
	}
	_, err := s.db.Exec(`
		INSERT INTO price_trackers (id, user_id, product_name, target_price, platforms, created_at, last_checked, last_price, is_active, track_mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.ProductName, t.TargetPrice, platforms,
		t.CreatedAt.UTC().Format(time.RFC3339), nullTime(t.LastChecked), nullInt(t.LastPrice),
		boolToInt(t.IsActive), mode,
	)
	return err
}

// FindActiveTracker returns the active tracker for the exact product name,
// compared case-insensitively. ErrNotFound when the user has none.
func (s *Store) FindActiveTracker(userID, productName string) (Tracker, error) {
	row := s.db.QueryRow(`
		SELECT `+trackerColumns+` FROM price_trackers
		WHERE user_id = ? AND lower(product_name) = lower(?) AND is_active = 1`,
		userID, productName,
	)
	return scanTracker(row)
}

// LoadUserTrackers returns the user's active trackers, newest first. The
// result is never nil.
func (s *Store) LoadUserTrackers(userID string) ([]Tracker, error) {
	rows, err := s.db.Query(`
		SELECT `+trackerColumns+` FROM price_trackers
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrackers(rows)
}

// ListActiveTrackers returns every active tracker across all users, used by
// the periodic price sweep.
func (s *Store) ListActiveTrackers() ([]Tracker, error) {
	rows, err := s.db.Query(`
		SELECT ` + trackerColumns + ` FROM price_trackers
		WHERE is_active = 1
		ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrackers(rows)
}

// UpdateTrackerTarget resets the target price and creation time of an
// existing tracker, used when a duplicate tracking request updates in place.
func (s *Store) UpdateTrackerTarget(id string, target int, createdAt time.Time) error {
	res, err := s.db.Exec(`
		UPDATE price_trackers SET target_price = ?, created_at = ? WHERE id = ?`,
		target, createdAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateTrackerPrice records the latest observed price and check time.
func (s *Store) UpdateTrackerPrice(id string, price int, checkedAt time.Time) error {
	res, err := s.db.Exec(`
		UPDATE price_trackers SET last_price = ?, last_checked = ? WHERE id = ?`,
		price, checkedAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeactivateTracker turns a tracker off without deleting its history.
func (s *Store) DeactivateTracker(id string) error {
	res, err := s.db.Exec(`UPDATE price_trackers SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- Preferences ---

// GetPreferences returns the user's filter settings, falling back to defaults
// when the user has never customized anything.
func (s *Store) GetPreferences(userID string) (Preferences, error) {
	var p Preferences
	var allow int
	var updatedAt string
	err := s.db.QueryRow(`
		SELECT user_id, allow_accessories, min_relevance_score, updated_at
		FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &allow, &p.MinRelevanceScore, &updatedAt)
	if err == sql.ErrNoRows {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return Preferences{}, err
	}
	p.AllowAccessories = allow != 0
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p, nil
}

// SetAllowAccessories upserts the accessory-filter preference.
func (s *Store) SetAllowAccessories(userID string, allow bool) error {
	_, err := s.db.Exec(`
		INSERT INTO user_preferences (user_id, allow_accessories, min_relevance_score, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET allow_accessories = excluded.allow_accessories, updated_at = excluded.updated_at`,
		userID, boolToInt(allow), DefaultMinRelevanceScore, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// SetMinRelevanceScore upserts the relevance threshold preference.
func (s *Store) SetMinRelevanceScore(userID string, score float64) error {
	_, err := s.db.Exec(`
		INSERT INTO user_preferences (user_id, allow_accessories, min_relevance_score, updated_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET min_relevance_score = excluded.min_relevance_score, updated_at = excluded.updated_at`,
		userID, score, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// --- Price history ---

// AppendPriceHistory records one observation. History is append-only.
func (s *Store) AppendPriceHistory(rec PriceRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO price_history (tracker_id, price, platform, item_name, link, observed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.TrackerID, rec.Price, rec.Platform, rec.ItemName, rec.Link,
		rec.ObservedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetPriceHistory returns the most recent observations for a tracker, newest
// first.
func (s *Store) GetPriceHistory(trackerID string, limit int) ([]PriceRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, tracker_id, price, platform, item_name, link, observed_at
		FROM price_history WHERE tracker_id = ?
		ORDER BY observed_at DESC, id DESC LIMIT ?`, trackerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []PriceRecord{}
	for rows.Next() {
		var r PriceRecord
		var observedAt string
		if err := rows.Scan(&r.ID, &r.TrackerID, &r.Price, &r.Platform, &r.ItemName, &r.Link, &observedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, observedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing observed_at: %w", err)
		}
		r.ObservedAt = t
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTracker(row rowScanner) (Tracker, error) {
	var t Tracker
	var createdAt string
	var lastChecked sql.NullString
	var lastPrice sql.NullInt64
	var active int
	err := row.Scan(&t.ID, &t.UserID, &t.ProductName, &t.TargetPrice, &t.Platforms,
		&createdAt, &lastChecked, &lastPrice, &active, &t.TrackMode)
	if err == sql.ErrNoRows {
		return Tracker{}, ErrNotFound
	}
	if err != nil {
		return Tracker{}, err
	}

	ct, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Tracker{}, fmt.Errorf("parsing created_at: %w", err)
	}
	t.CreatedAt = ct
	t.IsActive = active != 0
	if lastChecked.Valid {
		lc, err := time.Parse(time.RFC3339, lastChecked.String)
		if err != nil {
			return Tracker{}, fmt.Errorf("parsing last_checked: %w", err)
		}
		t.LastChecked = &lc
	}
	if lastPrice.Valid {
		p := int(lastPrice.Int64)
		t.LastPrice = &p
	}
	return t, nil
}

func collectTrackers(rows *sql.Rows) ([]Tracker, error) {
	trackers := []Tracker{}
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
