package email

import (
	"fmt"
	"log/slog"
)

// Provider names a backend.
type Provider string

const (
	ProviderAuto     Provider = "auto"
	ProviderPostmark Provider = "postmark"
	ProviderSMTP     Provider = "smtp"
	ProviderDev      Provider = "dev"
)

// Config covers every backend; only the fields of the selected provider
// are used.
type Config struct {
	Provider Provider `env:"EMAIL_PROVIDER" envDefault:"auto"`

	From     string `env:"EMAIL_FROM"`
	FromName string `env:"EMAIL_FROM_NAME" envDefault:"Cernol Chemicals"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SMTPHost     string `env:"EMAIL_HOST"`
	SMTPPort     int    `env:"EMAIL_PORT" envDefault:"587"`
	SMTPUser     string `env:"EMAIL_USER"`
	SMTPPassword string `env:"EMAIL_PASS"`

	DevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// Resolve picks the concrete provider for ProviderAuto: Postmark when a
// server token is set, SMTP when a host is set, the dev sender outside
// production, and Postmark otherwise (which then reports as unconfigured).
func (c Config) Resolve(production bool) Provider {
	if c.Provider != "" && c.Provider != ProviderAuto {
		return c.Provider
	}
	switch {
	case c.PostmarkServerToken != "":
		return ProviderPostmark
	case c.SMTPHost != "":
		return ProviderSMTP
	case !production:
		return ProviderDev
	default:
		return ProviderPostmark
	}
}

// CredentialsConfigured reports whether the provider has what it needs to
// authenticate with its upstream.
func (c Config) CredentialsConfigured(p Provider) bool {
	switch p {
	case ProviderPostmark:
		return c.PostmarkServerToken != ""
	case ProviderSMTP:
		return c.SMTPHost != ""
	case ProviderDev:
		return true
	}
	return false
}

// New builds the sender for the resolved provider.
func New(cfg Config, production bool, log *slog.Logger) (Sender, Provider, error) {
	p := cfg.Resolve(production)
	var (
		s   Sender
		err error
	)
	switch p {
	case ProviderPostmark:
		s, err = NewPostmarkSender(cfg)
	case ProviderSMTP:
		s, err = NewSMTPSender(cfg)
	case ProviderDev:
		s, err = NewDevSender(cfg.DevDir, log), nil
	default:
		err = fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, p)
	}
	if err != nil {
		return nil, p, err
	}
	return s, p, nil
}
