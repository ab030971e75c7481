package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/cernol/formintake/svc/submission"
)

const (
	contactsCollection = "contacts"
	quotesCollection   = "quotes"
)

func str(maxLen int) bson.M {
	return bson.M{"bsonType": "string", "maxLength": maxLen}
}

func enum(values ...string) bson.M {
	return bson.M{"bsonType": "string", "enum": values}
}

var dates = bson.M{
	"createdAt": bson.M{"bsonType": "date"},
	"updatedAt": bson.M{"bsonType": "date"},
}

func withDates(props bson.M) bson.M {
	for k, v := range dates {
		props[k] = v
	}
	return props
}

var contactValidator = bson.M{"$jsonSchema": bson.M{
	"bsonType": "object",
	"required": []string{"firstName", "lastName", "email", "message", "service", "emailStatus", "createdAt"},
	"properties": withDates(bson.M{
		"firstName":   str(submission.MaxNameLen),
		"lastName":    str(submission.MaxNameLen),
		"email":       str(254),
		"phone":       str(submission.MaxPhoneLen),
		"company":     str(submission.MaxCompanyLen),
		"subject":     str(submission.MaxSubjectLen),
		"message":     str(submission.MaxMessageLen),
		"service":     enum("general-inquiry", "quote-request", "technical-support", "partnership"),
		"emailStatus": enum(string(submission.EmailPending), string(submission.EmailSent), string(submission.EmailFailed)),
	}),
}}

var quoteValidator = bson.M{"$jsonSchema": bson.M{
	"bsonType": "object",
	"required": []string{"firstName", "lastName", "email", "phone", "company", "industry", "services", "requirements", "createdAt"},
	"properties": withDates(bson.M{
		"firstName": str(submission.MaxNameLen),
		"lastName":  str(submission.MaxNameLen),
		"email":     str(254),
		"phone":     str(submission.MaxPhoneLen),
		"company":   str(submission.MaxCompanyLen),
		"industry":  enum(submission.Industries...),
		"address":   str(submission.MaxAddressLen),
		"services": bson.M{
			"bsonType": "array",
			"minItems": 1,
			"maxItems": submission.MaxServices,
			"items":    enum(submission.Services...),
		},
		"budget":       enum(submission.Budgets...),
		"timeline":     enum(submission.Timelines...),
		"requirements": str(submission.MaxRequirementsLen),
		"newsletter":   bson.M{"bsonType": "bool"},
	}),
}}

// indexes shared by both collections: newest first listing and lookup by email.
func indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
}

// EnsureSchema creates the collections with their validators when they do
// not exist yet, and makes sure the indexes are in place.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for name, validator := range map[string]bson.M{
		contactsCollection: contactValidator,
		quotesCollection:   quoteValidator,
	} {
		names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
		if err != nil {
			return fmt.Errorf("list collections: %w", classify(err))
		}
		if len(names) == 0 {
			opts := options.CreateCollection().SetValidator(validator)
			if err := s.db.CreateCollection(ctx, name, opts); err != nil {
				return fmt.Errorf("create collection %s: %w", name, classify(err))
			}
		}
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes()); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, classify(err))
		}
	}
	return nil
}
