// Package handler provides type-safe HTTP request handling.
//
// A HandlerFunc receives a Context and an already bound request value and
// returns a Response. Wrap turns it into an http.HandlerFunc, running the
// configured binders first and routing bind or render failures to an
// ErrorHandler:
//
//	func submit(ctx handler.Context, req binder.Payload) handler.Response {
//		receipt, err := svc.SubmitContact(ctx, req)
//		if err != nil {
//			return handler.JSON(errorBody(err), handler.WithJSONStatus(http.StatusBadRequest))
//		}
//		return handler.JSON(receipt, handler.WithJSONStatus(http.StatusAccepted))
//	}
//
//	r.Post("/api/contact", handler.Wrap(submit,
//		handler.WithBinder[handler.Context, binder.Payload](binder.BindPayload(maxBytes)),
//	))
//
// JSON renders any value as the complete response body. WriteJSON does the
// same for plain http.Handlers such as middleware and not-found handlers.
package handler
