package submission

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps submissions in process memory. It applies the same
// schema checks as the database backends.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]Contact
	quotes   map[string]Quote
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts: make(map[string]Contact),
		quotes:   make(map[string]Quote),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) CreateContact(ctx context.Context, c *Contact) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	if err := CheckContactSchema(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := *c
	rec.ID, rec.CreatedAt, rec.UpdatedAt = uuid.NewString(), now, now
	s.contacts[rec.ID] = rec
	*c = rec
	return nil
}

func (s *MemoryStore) GetContact(_ context.Context, id string) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) UpdateContactEmailStatus(_ context.Context, id string, status EmailStatus) error {
	if status != EmailSent && status != EmailFailed {
		return ErrStatusTransition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return ErrNotFound
	}
	if c.EmailStatus != EmailPending {
		return ErrStatusTransition
	}
	c.EmailStatus, c.UpdatedAt = status, s.now()
	s.contacts[id] = c
	return nil
}

func (s *MemoryStore) CreateQuote(ctx context.Context, q *Quote) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	if err := CheckQuoteSchema(q); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := *q
	rec.Services = slices.Clone(q.Services)
	rec.ID, rec.CreatedAt, rec.UpdatedAt = uuid.NewString(), now, now
	s.quotes[rec.ID] = rec
	*q = rec
	q.Services = slices.Clone(rec.Services)
	return nil
}

func (s *MemoryStore) GetQuote(_ context.Context, id string) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, ErrNotFound
	}
	q.Services = slices.Clone(q.Services)
	return q, nil
}

func (s *MemoryStore) ListQuotes(_ context.Context, opts ListOptions) ([]Quote, int64, error) {
	s.mu.RLock()
	all := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		q.Services = slices.Clone(q.Services)
		all = append(all, q)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b Quote) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := int64(len(all))
	start := min(max(opts.Offset, 0), len(all))
	end := len(all)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(all))
	}
	return all[start:end], total, nil
}
