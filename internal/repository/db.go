package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps a sql.DB and the dialect its queries are written for
type DB struct {
	*sql.DB
	driver string
}

// Open connects to sqlite or postgres and applies the schema.
// For sqlite, url is a file path; for postgres, a connection string.
func Open(ctx context.Context, driver, url string) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch driver {
	case "sqlite":
		dsn := url
		if !strings.HasPrefix(dsn, "file:") {
			dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", url)
		}
		conn, err = sql.Open("sqlite", dsn)
	case "postgres":
		conn, err = sql.Open("postgres", url)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: open failed: %w", driver, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: ping failed: %w", driver, err)
	}

	db := &DB{DB: conn, driver: driver}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		model_url TEXT NOT NULL DEFAULT '',
		templates TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		items TEXT NOT NULL,
		total_amount DOUBLE PRECISION NOT NULL,
		shipping_address TEXT NOT NULL,
		contact_number TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		tracking_number TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		razorpay_order_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments (order_id)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// normalizePage clamps skip to >= 0 and limit to 1..100
func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return skip, limit
}

// MaxPageSize bounds every listing
const MaxPageSize = 100
