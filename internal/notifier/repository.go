package notifier

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists delivered-notification records.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	FindByID(ctx context.Context, id string) (Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed notification repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a notification record.
func (r *PostgresRepository) Create(ctx context.Context, n Notification) error {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications
        (id, user_id, subscription_id, message, status, sent_at, read_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, n.UserID, n.SubscriptionID, n.Message, n.Status, n.SentAt.UTC(), n.ReadAt)
	return err
}

// FindByID fetches a notification by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Notification, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, subscription_id, message, status, sent_at, read_at
        FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, ErrNotFound
		}
		return Notification{}, err
	}
	return n, nil
}

// ListByUser returns a page of the user's notification history, most recent
// first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, subscription_id, message, status, sent_at, read_at
        FROM notifications WHERE user_id = $1 ORDER BY sent_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead stamps the notification as read.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read_at = $1 WHERE id = $2`, readAt.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var (
		id uuid.UUID
		n  Notification
	)
	if err := row.Scan(&id, &n.UserID, &n.SubscriptionID, &n.Message, &n.Status, &n.SentAt, &n.ReadAt); err != nil {
		return Notification{}, err
	}
	n.ID = id.String()
	n.SentAt = n.SentAt.UTC()
	return n, nil
}

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]Notification
}

// NewMemoryRepository builds an in-memory notification store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Notification)}
}

func (r *memoryRepository) Create(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = n
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []Notification
	for _, n := range r.items {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SentAt.After(list[j].SentAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *memoryRepository) MarkRead(_ context.Context, id string, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	at := readAt.UTC()
	n.ReadAt = &at
	r.items[id] = n
	return nil
}
