/*
Package sqlite provides a SQLite-backed implementation of booking.Store.

PURPOSE:
  Production persistence for the booking domain. In a larger deployment the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  cleaners:       Service provider roster (active flag)
  time_off:       Inclusive unavailability intervals per cleaner
  jobs:           Scheduled visits, one row per date+slot claim
  subscriptions:  Recurring plans (frequency, preferred day/slot, property)
  addons:         Optional extras catalogue
  settings:       Flat key/value business parameters

CAPACITY ENFORCEMENT:
  InsertJob runs inside a transaction: it re-counts capacity (active
  cleaners without covering time-off) and booked units (non-cancelled jobs)
  for the job's date+slot, and refuses the insert with ErrSlotConflict when
  the slot is full. This is the write-time constraint that the engine's
  snapshot-based availability cannot provide on its own.

DATES:
  All calendar dates are stored as YYYY-MM-DD TEXT. Lexical order equals
  chronological order, so range queries use plain string comparison and no
  timezone ever touches the data.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/bookings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - booking/store.go: Interface definition
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tidyhive/booking-engine/booking"
	"github.com/tidyhive/booking-engine/engine"
)

// Store implements booking.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ booking.Store = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers, which SQLite wants anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cleaners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS time_off (
		id TEXT PRIMARY KEY,
		cleaner_id TEXT NOT NULL REFERENCES cleaners(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_time_off_cleaner ON time_off(cleaner_id);
	CREATE INDEX IF NOT EXISTS idx_time_off_range ON time_off(start_date, end_date);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		subscription_id TEXT,
		date TEXT NOT NULL,
		slot TEXT NOT NULL,
		status TEXT NOT NULL,
		price TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		is_first_clean INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_date_slot ON jobs(date, slot);
	CREATE INDEX IF NOT EXISTS idx_jobs_customer ON jobs(customer_id);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		frequency TEXT NOT NULL,
		preferred_weekday INTEGER,
		preferred_slot TEXT NOT NULL,
		months_ahead INTEGER NOT NULL,
		sqft REAL NOT NULL,
		bedrooms INTEGER NOT NULL,
		bathrooms REAL NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS addons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CLEANERS AND TIME-OFF
// =============================================================================

func (s *Store) SaveCleaner(ctx context.Context, c booking.Cleaner) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cleaners (id, name, active) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		c.ID, c.Name, boolToInt(c.Active))
	return err
}

func (s *Store) GetCleaner(ctx context.Context, id string) (booking.Cleaner, error) {
	var c booking.Cleaner
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active FROM cleaners WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &active)
	if err == sql.ErrNoRows {
		return booking.Cleaner{}, booking.ErrNotFound
	}
	if err != nil {
		return booking.Cleaner{}, err
	}
	c.Active = active != 0
	return c, nil
}

func (s *Store) ListCleaners(ctx context.Context) ([]booking.Cleaner, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, active FROM cleaners ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Cleaner
	for rows.Next() {
		var c booking.Cleaner
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &active); err != nil {
			return nil, err
		}
		c.Active = active != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SaveTimeOff(ctx context.Context, t booking.TimeOff) error {
	if _, err := s.GetCleaner(ctx, t.CleanerID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (id, cleaner_id, start_date, end_date, reason)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.CleanerID, t.Start.String(), t.End.String(), t.Reason)
	return err
}

func (s *Store) ListTimeOff(ctx context.Context, from, to engine.Date) ([]booking.TimeOff, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cleaner_id, start_date, end_date, reason FROM time_off
		WHERE end_date >= ? AND start_date <= ?
		ORDER BY start_date`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.TimeOff
	for rows.Next() {
		var t booking.TimeOff
		var start, end string
		if err := rows.Scan(&t.ID, &t.CleanerID, &start, &end, &t.Reason); err != nil {
			return nil, err
		}
		if t.Start, err = engine.ParseDate(start); err != nil {
			return nil, err
		}
		if t.End, err = engine.ParseDate(end); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// JOBS
// =============================================================================

// InsertJob claims one cleaner-slot unit, enforcing the capacity constraint
// at write time. The count and insert run in a single transaction so a
// racing insert for the last unit loses with ErrSlotConflict.
func (s *Store) InsertJob(ctx context.Context, j booking.Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	date := j.Date.String()

	var capacity int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cleaners c
		WHERE c.active = 1
		  AND NOT EXISTS (
			SELECT 1 FROM time_off t
			WHERE t.cleaner_id = c.id AND t.start_date <= ? AND t.end_date >= ?
		  )`, date, date).Scan(&capacity)
	if err != nil {
		return err
	}

	var booked int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs
		WHERE date = ? AND slot = ? AND status NOT IN ('cancelled', 'no_show')`,
		date, string(j.Slot)).Scan(&booked)
	if err != nil {
		return err
	}

	if booked >= capacity {
		return booking.ErrSlotConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jobs (id, customer_id, subscription_id, date, slot, status,
		                  price, duration_minutes, is_first_clean, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CustomerID, j.SubscriptionID, date, string(j.Slot), string(j.Status),
		j.Price.String(), j.DurationMinutes, boolToInt(j.IsFirstClean),
		j.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return booking.ErrDuplicateID
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) GetJob(ctx context.Context, id string) (booking.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, subscription_id, date, slot, status,
		       price, duration_minutes, is_first_clean, created_at
		FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return booking.Job{}, booking.ErrNotFound
	}
	return j, err
}

func (s *Store) UpdateJobStatus(ctx context.Context, id string, status engine.JobStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (s *Store) ListJobs(ctx context.Context, from, to engine.Date) ([]booking.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, subscription_id, date, slot, status,
		       price, duration_minutes, is_first_clean, created_at
		FROM jobs WHERE date >= ? AND date <= ?
		ORDER BY date, id`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) ListJobDatesByCustomer(ctx context.Context, customerID string) ([]engine.Date, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM jobs
		WHERE customer_id = ? AND status NOT IN ('cancelled', 'no_show')
		ORDER BY date`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (booking.Job, error) {
	var j booking.Job
	var date, slot, status, price, createdAt string
	var firstClean int
	err := row.Scan(&j.ID, &j.CustomerID, &j.SubscriptionID, &date, &slot, &status,
		&price, &j.DurationMinutes, &firstClean, &createdAt)
	if err != nil {
		return booking.Job{}, err
	}
	if j.Date, err = engine.ParseDate(date); err != nil {
		return booking.Job{}, err
	}
	j.Slot = engine.Slot(slot)
	j.Status = engine.JobStatus(status)
	if j.Price, err = decimal.NewFromString(price); err != nil {
		return booking.Job{}, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	j.IsFirstClean = firstClean != 0
	if j.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return booking.Job{}, err
	}
	return j, nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

func (s *Store) SaveSubscription(ctx context.Context, sub booking.Subscription) error {
	var weekday any
	if sub.PreferredWeekday != nil {
		weekday = int(*sub.PreferredWeekday)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, customer_id, frequency, preferred_weekday,
		                           preferred_slot, months_ahead, sqft, bedrooms,
		                           bathrooms, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			frequency = excluded.frequency,
			preferred_weekday = excluded.preferred_weekday,
			preferred_slot = excluded.preferred_slot,
			months_ahead = excluded.months_ahead,
			active = excluded.active`,
		sub.ID, sub.CustomerID, string(sub.Frequency), weekday,
		string(sub.PreferredSlot), sub.MonthsAhead, sub.Property.Sqft,
		sub.Property.Bedrooms, sub.Property.Bathrooms, boolToInt(sub.Active),
		sub.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetSubscription(ctx context.Context, id string) (booking.Subscription, error) {
	var sub booking.Subscription
	var frequency, slot, createdAt string
	var weekday sql.NullInt64
	var active int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, frequency, preferred_weekday, preferred_slot,
		       months_ahead, sqft, bedrooms, bathrooms, active, created_at
		FROM subscriptions WHERE id = ?`, id,
	).Scan(&sub.ID, &sub.CustomerID, &frequency, &weekday, &slot,
		&sub.MonthsAhead, &sub.Property.Sqft, &sub.Property.Bedrooms,
		&sub.Property.Bathrooms, &active, &createdAt)
	if err == sql.ErrNoRows {
		return booking.Subscription{}, booking.ErrNotFound
	}
	if err != nil {
		return booking.Subscription{}, err
	}
	sub.Frequency = engine.Frequency(frequency)
	sub.PreferredSlot = engine.Slot(slot)
	if weekday.Valid {
		wd := time.Weekday(weekday.Int64)
		sub.PreferredWeekday = &wd
	}
	sub.Active = active != 0
	if sub.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return booking.Subscription{}, err
	}
	return sub, nil
}

// =============================================================================
// ADD-ONS AND SETTINGS
// =============================================================================

func (s *Store) SaveAddon(ctx context.Context, a booking.Addon) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO addons (id, name, price, duration_minutes) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			duration_minutes = excluded.duration_minutes`,
		a.ID, a.Name, a.Price.String(), a.DurationMinutes)
	return err
}

func (s *Store) ListAddons(ctx context.Context) ([]booking.Addon, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, duration_minutes FROM addons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Addon
	for rows.Next() {
		var a booking.Addon
		var price string
		if err := rows.Scan(&a.ID, &a.Name, &price, &a.DurationMinutes); err != nil {
			return nil, err
		}
		if a.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LoadSettings returns the raw mapping. Values are stored as TEXT; numeric
// strings decode here, anything else passes through as a string for
// SettingsFromMap to fall back on.
func (s *Store) LoadSettings(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[key] = f
		} else {
			out[key] = value
		}
	}
	return out, rows.Err()
}

func (s *Store) SaveSetting(ctx context.Context, key string, value any) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, fmt.Sprint(value))
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
