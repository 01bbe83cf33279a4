package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalaasutra/storefront/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SQLUserRepository implements UserRepository on a SQL database
type SQLUserRepository struct {
	db *DB
}

// NewSQLUserRepository creates a user repository backed by db
func NewSQLUserRepository(db *DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// Create stores a user. Emails are compared case-insensitively.
func (r *SQLUserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	user.Email = normalizeEmail(user.Email)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, r.db.rebind(`INSERT INTO users (id, email, full_name, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		user.ID, user.Email, user.FullName, string(user.Role), user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		// The unique index is the source of truth when two registrations race.
		if _, lookupErr := r.GetByEmail(ctx, user.Email); lookupErr == nil {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// GetByEmail returns the user registered with email
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		u         models.User
		role      string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT id, email, full_name, role, password_hash, created_at FROM users WHERE email = ?`), normalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.FullName, &role, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.Role = models.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
