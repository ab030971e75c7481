package intake

import (
	"net/http"

	"github.com/cernol/formintake/binder"
	"github.com/cernol/formintake/handler"
	"github.com/cernol/formintake/pkg/environment"
)

func (a *api) wrapSubmit(h handler.HandlerFunc[handler.Context, binder.Payload]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinder[handler.Context, binder.Payload](binder.BindPayload(a.opts.MaxBodyBytes)),
		handler.WithErrorHandler[handler.Context, binder.Payload](bindError),
	)
}

// POST /api/contact
func (a *api) submitContact() http.HandlerFunc {
	return a.wrapSubmit(func(ctx handler.Context, req binder.Payload) handler.Response {
		receipt, err := a.opts.Submitter.SubmitContact(ctx, req)
		if err != nil {
			return submitError(contactForm, err, environment.FromContext(ctx))
		}
		return handler.JSON(contactAccepted{
			Success:      true,
			Message:      contactAcceptedMessage,
			ContactID:    receipt.ID,
			ResponseTime: responseTime(receipt.Elapsed),
		}, handler.WithJSONStatus(http.StatusAccepted))
	})
}

// POST /api/quote
func (a *api) submitQuote() http.HandlerFunc {
	return a.wrapSubmit(func(ctx handler.Context, req binder.Payload) handler.Response {
		receipt, err := a.opts.Submitter.SubmitQuote(ctx, req)
		if err != nil {
			return submitError(quoteForm, err, environment.FromContext(ctx))
		}
		return handler.JSON(quoteCreated{
			Success:      true,
			Message:      quoteCreatedMessage,
			QuoteID:      receipt.ID,
			ResponseTime: responseTime(receipt.Elapsed),
		}, handler.WithJSONStatus(http.StatusCreated))
	})
}
