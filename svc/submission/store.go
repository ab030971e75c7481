package submission

import "context"

// ContactStore persists contact submissions.
type ContactStore interface {
	// CreateContact assigns ID and timestamps on success only.
	CreateContact(ctx context.Context, c *Contact) error
	GetContact(ctx context.Context, id string) (Contact, error)
	// UpdateContactEmailStatus moves a pending record to sent or failed.
	// Any other transition returns ErrStatusTransition.
	UpdateContactEmailStatus(ctx context.Context, id string, status EmailStatus) error
}

// QuoteStore persists quote requests.
type QuoteStore interface {
	CreateQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, id string) (Quote, error)
	ListQuotes(ctx context.Context, opts ListOptions) ([]Quote, int64, error)
}

// Store is everything a storage backend provides.
type Store interface {
	ContactStore
	QuoteStore
	Ping(ctx context.Context) error
}
