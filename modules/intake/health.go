package intake

import (
	"context"
	"net/http"
	"time"

	"github.com/cernol/formintake/handler"
	"github.com/cernol/formintake/pkg/logger"
	"github.com/cernol/formintake/pkg/queue"
)

type healthBody struct {
	Status    string         `json:"status"`
	Services  healthServices `json:"services"`
	Config    healthConfig   `json:"config"`
	Timestamp string         `json:"timestamp"`
}

type healthServices struct {
	Database    string       `json:"database"`
	Email       string       `json:"email"`
	Queue       *queue.Stats `json:"queue,omitempty"`
	Environment string       `json:"environment"`
	Version     string       `json:"version"`
}

type healthConfig struct {
	Email healthEmail `json:"email"`
}

type healthEmail struct {
	Provider         string `json:"provider"`
	FromConfigured   bool   `json:"fromConfigured"`
	AdminConfigured  bool   `json:"adminConfigured"`
	APIKeyConfigured string `json:"apiKeyConfigured"`
}

// GET /api/health always answers 200; degraded dependencies show up in
// the body.
func (a *api) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.opts.HealthTimeout)
	defer cancel()

	body := healthBody{
		Status: "ok",
		Services: healthServices{
			Database:    "connected",
			Email:       "misconfigured",
			Environment: a.opts.Environment.String(),
			Version:     a.opts.Version,
		},
		Config: healthConfig{Email: healthEmail{
			Provider:         a.opts.Email.Provider,
			FromConfigured:   a.opts.Email.FromConfigured,
			AdminConfigured:  a.opts.Email.AdminConfigured,
			APIKeyConfigured: "missing",
		}},
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := a.opts.Store.Ping(ctx); err != nil {
		body.Services.Database = "disconnected"
		a.log.WarnContext(ctx, "health: database ping failed", logger.Error(err))
	}
	if a.opts.Email.APIKeyConfigured {
		body.Services.Email = "ready"
		body.Config.Email.APIKeyConfigured = "configured"
	}
	if a.opts.Queue != nil {
		if stats, err := a.opts.Queue(ctx); err != nil {
			a.log.WarnContext(ctx, "health: queue stats unavailable", logger.Error(err))
		} else {
			body.Services.Queue = &stats
		}
	}

	_ = handler.WriteJSON(w, r, http.StatusOK, body)
}
