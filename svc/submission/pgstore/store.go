// Package pgstore persists submissions in PostgreSQL.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cernol/formintake/pkg/pg"
	"github.com/cernol/formintake/svc/submission"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, migrations, migrationsDir, cfg, log)
}

// Store implements submission.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ submission.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		// timestamptz keeps microseconds
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := pg.Healthcheck(s.pool)(ctx); err != nil {
		return submission.Unavailable(err)
	}
	return nil
}

const contactColumns = `id, first_name, last_name, email, phone, company, subject, message, service, email_status, created_at, updated_at`

func (s *Store) CreateContact(ctx context.Context, c *submission.Contact) error {
	if err := submission.CheckContactSchema(c); err != nil {
		return err
	}

	rec := *c
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt

	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (`+contactColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.FirstName, rec.LastName, rec.Email, rec.Phone, rec.Company, rec.Subject,
		rec.Message, rec.Service, string(rec.EmailStatus), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", classify(err))
	}
	*c = rec
	return nil
}

func (s *Store) GetContact(ctx context.Context, id string) (submission.Contact, error) {
	if !validID(id) {
		return submission.Contact{}, submission.ErrNotFound
	}

	var (
		c      submission.Contact
		status string
	)
	err := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Company, &c.Subject,
		&c.Message, &c.Service, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return submission.Contact{}, classify(err)
	}
	c.EmailStatus = submission.EmailStatus(status)
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	return c, nil
}

func (s *Store) UpdateContactEmailStatus(ctx context.Context, id string, status submission.EmailStatus) error {
	if status != submission.EmailSent && status != submission.EmailFailed {
		return submission.ErrStatusTransition
	}
	if !validID(id) {
		return submission.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET email_status = $2, updated_at = $3 WHERE id = $1 AND email_status = 'pending'`,
		id, string(status), s.now(),
	)
	if err != nil {
		return fmt.Errorf("update contact email status: %w", classify(err))
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM contacts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return classify(err)
	}
	if !exists {
		return submission.ErrNotFound
	}
	return submission.ErrStatusTransition
}

const quoteColumns = `id, first_name, last_name, email, phone, company, industry, address, services, budget, timeline, requirements, newsletter, created_at, updated_at`

func (s *Store) CreateQuote(ctx context.Context, q *submission.Quote) error {
	if err := submission.CheckQuoteSchema(q); err != nil {
		return err
	}

	rec := *q
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt

	_, err := s.pool.Exec(ctx,
		`INSERT INTO quotes (`+quoteColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.FirstName, rec.LastName, rec.Email, rec.Phone, rec.Company, rec.Industry,
		rec.Address, rec.Services, rec.Budget, rec.Timeline, rec.Requirements, rec.Newsletter,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", classify(err))
	}
	*q = rec
	return nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (submission.Quote, error) {
	if !validID(id) {
		return submission.Quote{}, submission.ErrNotFound
	}

	q, err := scanQuote(s.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		return submission.Quote{}, classify(err)
	}
	return q, nil
}

func (s *Store) ListQuotes(ctx context.Context, opts submission.ListOptions) ([]submission.Quote, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM quotes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", classify(err))
	}

	// LIMIT NULL means no limit
	var limit *int
	if opts.Limit > 0 {
		limit = &opts.Limit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+quoteColumns+` FROM quotes ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, max(opts.Offset, 0),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", classify(err))
	}
	defer rows.Close()

	quotes := []submission.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quote: %w", classify(err))
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", classify(err))
	}
	return quotes, total, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanQuote(row pgx.Row) (submission.Quote, error) {
	var q submission.Quote
	err := row.Scan(
		&q.ID, &q.FirstName, &q.LastName, &q.Email, &q.Phone, &q.Company, &q.Industry,
		&q.Address, &q.Services, &q.Budget, &q.Timeline, &q.Requirements, &q.Newsletter,
		&q.CreatedAt, &q.UpdatedAt,
	)
	q.CreatedAt, q.UpdatedAt = q.CreatedAt.UTC(), q.UpdatedAt.UTC()
	return q, err
}

// classify maps pgx errors onto the submission error taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsNotFoundError(err):
		return submission.ErrNotFound
	case pg.IsNotNullViolationError(err),
		pg.IsCheckViolationError(err),
		pg.IsStringTooLongError(err):
		return &submission.SchemaError{Details: []string{constraintDetail(err)}, Cause: err}
	case pg.IsUnavailableError(err), errors.Is(err, context.Canceled):
		return submission.Unavailable(err)
	}
	return err
}

func constraintDetail(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "Invalid record"
	}
	switch {
	case pg.IsNotNullViolationError(err) && pgErr.ColumnName != "":
		return pgErr.ColumnName + " is required"
	case pg.IsStringTooLongError(err):
		return "Value is too long"
	case pgErr.ConstraintName != "":
		return "Value violates " + pgErr.ConstraintName
	}
	return "Invalid record"
}
