package mongostore

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cernol/formintake/svc/submission"
)

type contactDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	FirstName   string        `bson:"firstName"`
	LastName    string        `bson:"lastName"`
	Email       string        `bson:"email"`
	Phone       string        `bson:"phone,omitempty"`
	Company     string        `bson:"company,omitempty"`
	Subject     string        `bson:"subject,omitempty"`
	Message     string        `bson:"message"`
	Service     string        `bson:"service"`
	EmailStatus string        `bson:"emailStatus"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func toContactDoc(c submission.Contact) contactDoc {
	return contactDoc{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		Subject:     c.Subject,
		Message:     c.Message,
		Service:     c.Service,
		EmailStatus: string(c.EmailStatus),
	}
}

func (d contactDoc) contact() submission.Contact {
	return submission.Contact{
		ID:          d.ID.Hex(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		Company:     d.Company,
		Subject:     d.Subject,
		Message:     d.Message,
		Service:     d.Service,
		EmailStatus: submission.EmailStatus(d.EmailStatus),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type quoteDoc struct {
	ID           bson.ObjectID `bson:"_id"`
	FirstName    string        `bson:"firstName"`
	LastName     string        `bson:"lastName"`
	Email        string        `bson:"email"`
	Phone        string        `bson:"phone"`
	Company      string        `bson:"company"`
	Industry     string        `bson:"industry"`
	Address      string        `bson:"address,omitempty"`
	Services     []string      `bson:"services"`
	Budget       string        `bson:"budget"`
	Timeline     string        `bson:"timeline"`
	Requirements string        `bson:"requirements"`
	Newsletter   bool          `bson:"newsletter"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

func toQuoteDoc(q submission.Quote) quoteDoc {
	return quoteDoc{
		FirstName:    q.FirstName,
		LastName:     q.LastName,
		Email:        q.Email,
		Phone:        q.Phone,
		Company:      q.Company,
		Industry:     q.Industry,
		Address:      q.Address,
		Services:     slices.Clone(q.Services),
		Budget:       q.Budget,
		Timeline:     q.Timeline,
		Requirements: q.Requirements,
		Newsletter:   q.Newsletter,
	}
}

func (d quoteDoc) quote() submission.Quote {
	return submission.Quote{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Phone:        d.Phone,
		Company:      d.Company,
		Industry:     d.Industry,
		Address:      d.Address,
		Services:     slices.Clone(d.Services),
		Budget:       d.Budget,
		Timeline:     d.Timeline,
		Requirements: d.Requirements,
		Newsletter:   d.Newsletter,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
