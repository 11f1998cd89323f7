package subscription

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryRepository builds an in-memory subscription store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{subs: make(map[string]Subscription)}
}

func (r *memoryRepository) Create(_ context.Context, sub Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ID] = sub
	return nil
}

func (r *memoryRepository) Update(_ context.Context, sub Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subs[sub.ID]
	if !ok || existing.UserID != sub.UserID {
		return ErrNotFound
	}
	r.subs[sub.ID] = sub
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subs[id]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	delete(r.subs, id)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id, userID string) (Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[id]
	if !ok || sub.UserID != userID {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var subs []Subscription
	for _, sub := range r.subs {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].NextPaymentDate.Before(subs[j].NextPaymentDate)
	})
	return subs, nil
}

func (r *memoryRepository) DueBetween(_ context.Context, from, to time.Time) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var subs []Subscription
	for _, sub := range r.subs {
		if !sub.NotificationDate.Before(from) && !sub.NotificationDate.After(to) {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}
