package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists subscriptions.
type Repository interface {
	Create(ctx context.Context, sub Subscription) error
	Update(ctx context.Context, sub Subscription) error
	Delete(ctx context.Context, id, userID string) error
	FindByID(ctx context.Context, id, userID string) (Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]Subscription, error)
	// DueBetween returns subscriptions whose notification instant falls in
	// [from, to]. The reminder scheduler polls it on a fixed cadence.
	DueBetween(ctx context.Context, from, to time.Time) ([]Subscription, error)
}

const subscriptionColumns = `id, user_id, service_name, cost, next_payment_date,
    notification_offset, notification_date, recurrence_type, tag, high_priority,
    created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed subscription repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new subscription.
func (r *PostgresRepository) Create(ctx context.Context, sub Subscription) error {
	id, err := uuid.Parse(sub.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(sub.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO subscriptions
        (id, user_id, service_name, cost, next_payment_date, notification_offset,
         notification_date, recurrence_type, tag, high_priority, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, userID, sub.ServiceName, sub.Cost, sub.NextPaymentDate.UTC(), sub.NotificationOffset,
		sub.NotificationDate.UTC(), sub.RecurrenceType, sub.Tag, sub.HighPriority,
		sub.CreatedAt.UTC(), sub.UpdatedAt.UTC())
	return err
}

// Update replaces the mutable fields of a subscription owned by the user.
func (r *PostgresRepository) Update(ctx context.Context, sub Subscription) error {
	cmd, err := r.db.Exec(ctx, `UPDATE subscriptions SET
        service_name = $1, cost = $2, next_payment_date = $3, notification_offset = $4,
        notification_date = $5, recurrence_type = $6, tag = $7, high_priority = $8, updated_at = $9
        WHERE id = $10 AND user_id = $11`,
		sub.ServiceName, sub.Cost, sub.NextPaymentDate.UTC(), sub.NotificationOffset,
		sub.NotificationDate.UTC(), sub.RecurrenceType, sub.Tag, sub.HighPriority,
		sub.UpdatedAt.UTC(), sub.ID, sub.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a subscription and its recorded notifications.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE subscription_id = $1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// FindByID fetches a subscription owned by the user.
func (r *PostgresRepository) FindByID(ctx context.Context, id, userID string) (Subscription, error) {
	row := r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+`
        FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, err
	}
	return sub, nil
}

// ListByUser returns all subscriptions of a user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriptionColumns+`
        FROM subscriptions WHERE user_id = $1 ORDER BY next_payment_date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

// DueBetween returns subscriptions with a notification instant inside the window.
func (r *PostgresRepository) DueBetween(ctx context.Context, from, to time.Time) ([]Subscription, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriptionColumns+`
        FROM subscriptions WHERE notification_date BETWEEN $1 AND $2`, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func collectSubscriptions(rows pgx.Rows) ([]Subscription, error) {
	var subs []Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubscription(row pgx.Row) (Subscription, error) {
	var (
		id     uuid.UUID
		userID uuid.UUID
		sub    Subscription
	)
	if err := row.Scan(&id, &userID, &sub.ServiceName, &sub.Cost, &sub.NextPaymentDate,
		&sub.NotificationOffset, &sub.NotificationDate, &sub.RecurrenceType, &sub.Tag,
		&sub.HighPriority, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return Subscription{}, err
	}
	sub.ID = id.String()
	sub.UserID = userID.String()
	sub.NextPaymentDate = sub.NextPaymentDate.UTC()
	sub.NotificationDate = sub.NotificationDate.UTC()
	return sub, nil
}
