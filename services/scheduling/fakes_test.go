package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gobarber/database/repository"
	"gobarber/models"
	"gobarber/services/queue"
)

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Appointment
	users  map[int64]*models.User

	createErr error
	creates   int
}

func newFakeStore(users map[int64]*models.User) *fakeStore {
	return &fakeStore{rows: make(map[int64]*models.Appointment), users: users}
}

func (s *fakeStore) withContacts(a models.Appointment) *models.Appointment {
	a.Provider = s.users[a.ProviderID]
	a.User = s.users[a.UserID]
	return &a
}

func (s *fakeStore) FindByID(ctx context.Context, id int64) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return s.withContacts(*a), nil
}

func (s *fakeStore) CountActiveAt(ctx context.Context, providerID int64, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.rows {
		if a.ProviderID == providerID && a.Date.Equal(date) && a.CanceledAt == nil {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Create(ctx context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	for _, a := range s.rows {
		if a.ProviderID == appt.ProviderID && a.Date.Equal(appt.Date) && a.CanceledAt == nil {
			return fmt.Errorf("slot held: %w", repository.ErrConflict)
		}
	}
	s.nextID++
	appt.ID = s.nextID
	row := *appt
	s.rows[appt.ID] = &row
	return nil
}

func (s *fakeStore) MarkCanceled(ctx context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[appt.ID]
	if !ok || row.CanceledAt != nil {
		return repository.ErrStale
	}
	at := *appt.CanceledAt
	row.CanceledAt = &at
	return nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, a := range s.rows {
		if a.UserID == userID {
			out = append(out, *s.withContacts(*a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ListByProviderBetween(ctx context.Context, providerID int64, from, to time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, a := range s.rows {
		if a.ProviderID == providerID && a.CanceledAt == nil && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, *s.withContacts(*a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type fakeDirectory struct {
	users map[int64]*models.User
	err   error
}

func (d *fakeDirectory) CountProviders(ctx context.Context, id int64) (int64, error) {
	if d.err != nil {
		return 0, d.err
	}
	if u, ok := d.users[id]; ok && u.Provider {
		return 1, nil
	}
	return 0, nil
}

func (d *fakeDirectory) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.users[id], nil
}

type fakeSink struct {
	mu    sync.Mutex
	items []models.Notification
	err   error
}

func (s *fakeSink) Insert(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, *n)
	return nil
}

type enqueued struct {
	key      string
	payload  any
	uniqueID string
}

// recordingQueue keeps Add calls and applies the same unique-id suppression as the real backends.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []enqueued
	seen map[string]bool
}

func (q *recordingQueue) Add(ctx context.Context, key string, payload any, opts ...queue.Option) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := queue.UniqueIDOf(opts...)
	if id != "" {
		if q.seen == nil {
			q.seen = make(map[string]bool)
		}
		if q.seen[id] {
			return
		}
		q.seen[id] = true
	}
	q.jobs = append(q.jobs, enqueued{key: key, payload: payload, uniqueID: id})
}

func (q *recordingQueue) all() []enqueued {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]enqueued(nil), q.jobs...)
}

var errBackend = errors.New("backend down")
