// Package mongostore persists submissions in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/cernol/formintake/pkg/mongo"
	"github.com/cernol/formintake/svc/submission"
)

// codeDocumentValidation is the server error for a $jsonSchema rejection.
const codeDocumentValidation = 121

// Store implements submission.Store on a MongoDB database.
type Store struct {
	db       *mongo.Database
	contacts *mongo.Collection
	quotes   *mongo.Collection
	now      func() time.Time
}

var _ submission.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		contacts: db.Collection(contactsCollection),
		quotes:   db.Collection(quotesCollection),
		// BSON dates have millisecond precision
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := mongox.Healthcheck(s.db.Client())(ctx); err != nil {
		return submission.Unavailable(err)
	}
	return nil
}

func (s *Store) CreateContact(ctx context.Context, c *submission.Contact) error {
	if err := submission.CheckContactSchema(c); err != nil {
		return err
	}

	now := s.now()
	doc := toContactDoc(*c)
	doc.ID = bson.NewObjectID()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := s.contacts.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert contact: %w", classify(err))
	}
	*c = doc.contact()
	return nil
}

func (s *Store) GetContact(ctx context.Context, id string) (submission.Contact, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return submission.Contact{}, submission.ErrNotFound
	}

	var doc contactDoc
	if err := s.contacts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return submission.Contact{}, classify(err)
	}
	return doc.contact(), nil
}

func (s *Store) UpdateContactEmailStatus(ctx context.Context, id string, status submission.EmailStatus) error {
	if status != submission.EmailSent && status != submission.EmailFailed {
		return submission.ErrStatusTransition
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return submission.ErrNotFound
	}

	res, err := s.contacts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "emailStatus", Value: submission.EmailPending}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "emailStatus", Value: status},
			{Key: "updatedAt", Value: s.now()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("update contact email status: %w", classify(err))
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.contacts.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return submission.ErrNotFound
	}
	return submission.ErrStatusTransition
}

func (s *Store) CreateQuote(ctx context.Context, q *submission.Quote) error {
	if err := submission.CheckQuoteSchema(q); err != nil {
		return err
	}

	now := s.now()
	doc := toQuoteDoc(*q)
	doc.ID = bson.NewObjectID()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := s.quotes.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert quote: %w", classify(err))
	}
	*q = doc.quote()
	return nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (submission.Quote, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return submission.Quote{}, submission.ErrNotFound
	}

	var doc quoteDoc
	if err := s.quotes.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return submission.Quote{}, classify(err)
	}
	return doc.quote(), nil
}

func (s *Store) ListQuotes(ctx context.Context, opts submission.ListOptions) ([]submission.Quote, int64, error) {
	total, err := s.quotes.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", classify(err))
	}

	find := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(max(opts.Offset, 0)))
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cur, err := s.quotes.Find(ctx, bson.D{}, find)
	if err != nil {
		return nil, 0, fmt.Errorf("find quotes: %w", classify(err))
	}
	var docs []quoteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode quotes: %w", classify(err))
	}

	quotes := make([]submission.Quote, len(docs))
	for i, doc := range docs {
		quotes[i] = doc.quote()
	}
	return quotes, total, nil
}

// classify maps driver errors onto the submission error taxonomy.
func classify(err error) error {
	var serverErr mongo.ServerError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return submission.ErrNotFound
	case errors.As(err, &serverErr) && serverErr.HasErrorCode(codeDocumentValidation):
		return &submission.SchemaError{
			Details: []string{"Document failed validation"},
			Cause:   err,
		}
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return submission.Unavailable(err)
	}
	return err
}
