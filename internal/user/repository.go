package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	UpdateDeviceToken(ctx context.Context, id, deviceToken string) error
	// UpdatePIN sets the PIN hash for a user; a nil hash clears the PIN.
	UpdatePIN(ctx context.Context, id string, pinHash []byte) error
	// UpdatePassword replaces the password hash and clears any registered
	// PIN in the same statement, matching the reset-password flow.
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, pin_hash, device_token, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, user.Name, user.Email, user.PasswordHash, user.PINHash, user.DeviceToken, user.CreatedAt.UTC())
	return err
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, pin_hash, device_token, created_at
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, pin_hash, device_token, created_at
        FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateDeviceToken stores the push-registration token for a user.
func (r *PostgresRepository) UpdateDeviceToken(ctx context.Context, id, deviceToken string) error {
	return r.update(ctx, `UPDATE users SET device_token = $1 WHERE id = $2`, id, deviceToken)
}

// UpdatePIN sets or clears the PIN hash.
func (r *PostgresRepository) UpdatePIN(ctx context.Context, id string, pinHash []byte) error {
	return r.update(ctx, `UPDATE users SET pin_hash = $1 WHERE id = $2`, id, pinHash)
}

// UpdatePassword replaces the password hash and clears the PIN.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	return r.update(ctx, `UPDATE users SET password_hash = $1, pin_hash = NULL WHERE id = $2`, id, passwordHash)
}

func (r *PostgresRepository) update(ctx context.Context, query, id string, value any) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, value, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.PINHash, &user.DeviceToken, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
