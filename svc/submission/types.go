package submission

import "time"

// EmailStatus tracks background notification of a contact submission.
// It only ever moves from pending to sent or failed.
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// Contact is a stored contact form submission. Free-text fields hold
// sanitized, HTML-escaped text.
type Contact struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"firstName" validate:"required,max=50"`
	LastName    string      `json:"lastName" validate:"required,max=50"`
	Email       string      `json:"email" validate:"required,max=254,schemaemail"`
	Phone       string      `json:"phone,omitempty" validate:"max=20"`
	Company     string      `json:"company,omitempty" validate:"max=100"`
	Subject     string      `json:"subject,omitempty" validate:"max=200"`
	Message     string      `json:"message" validate:"required,max=2000"`
	Service     string      `json:"service" validate:"required,oneof=general-inquiry quote-request technical-support partnership"`
	EmailStatus EmailStatus `json:"emailStatus" validate:"required,oneof=pending sent failed"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Quote is a stored quote request.
type Quote struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName" validate:"required,max=50"`
	LastName     string    `json:"lastName" validate:"required,max=50"`
	Email        string    `json:"email" validate:"required,max=254,schemaemail"`
	Phone        string    `json:"phone" validate:"required,max=20"`
	Company      string    `json:"company" validate:"required,max=100"`
	Industry     string    `json:"industry" validate:"required,oneof=mining manufacturing agriculture water-treatment food-beverage pharmaceuticals textiles other"`
	Address      string    `json:"address,omitempty" validate:"max=200"`
	Services     []string  `json:"services" validate:"min=1,max=10,dive,oneof=industrial-chemicals lab-supplies water-treatment mining-chemicals food-beverage consulting"`
	Budget       string    `json:"budget" validate:"oneof=under-1000 1000-5000 5000-10000 10000-25000 over-25000 discuss"`
	Timeline     string    `json:"timeline" validate:"oneof=urgent normal flexible discuss"`
	Requirements string    `json:"requirements" validate:"required,max=2000"`
	Newsletter   bool      `json:"newsletter"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Allowed enumerations.
var (
	Industries = []string{"mining", "manufacturing", "agriculture", "water-treatment", "food-beverage", "pharmaceuticals", "textiles", "other"}
	Services   = []string{"industrial-chemicals", "lab-supplies", "water-treatment", "mining-chemicals", "food-beverage", "consulting"}
	Budgets    = []string{"under-1000", "1000-5000", "5000-10000", "10000-25000", "over-25000", "discuss"}
	Timelines  = []string{"urgent", "normal", "flexible", "discuss"}
)

// contact form subjects and the stored inquiry type they map to
var contactServices = map[string]string{
	"general":     "general-inquiry",
	"quote":       "quote-request",
	"support":     "technical-support",
	"partnership": "partnership",
}

const defaultContactService = "general-inquiry"

// Text limits in runes.
const (
	MaxNameLen         = 50
	MaxCompanyLen      = 100
	MaxSubjectLen      = 200
	MaxMessageLen      = 2000
	MaxAddressLen      = 200
	MaxRequirementsLen = 2000
	MaxPhoneLen        = 20
	MaxServices        = 10
	MaxSelectLen       = 50
	DefaultTextLen     = 1000
)

// Receipt is returned to the caller after a submission is stored.
type Receipt struct {
	ID      string
	Elapsed time.Duration
}

// ListOptions pages through stored records, newest first.
type ListOptions struct {
	Limit  int
	Offset int
}

// QuotePage is one page of quotes plus the total count.
type QuotePage struct {
	Quotes []Quote
	Total  int64
}
