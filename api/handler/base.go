package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskvault/backend/api/transport"
	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code, message := mapError(err)
	h.respondJSON(ctx, status, transport.NewError(code, message))
}

func (h baseHandler) respondNotFound(ctx *fasthttp.RequestCtx) {
	h.respondError(ctx, domain.ErrTaskNotFound)
}

// mapError translates domain classifications into the HTTP surface.
// FORBIDDEN deliberately collapses into 404 NOT_FOUND so a request for
// another user's resource is indistinguishable from a request for a
// nonexistent one. Unclassified errors surface as a generic 500 with no
// internal detail.
func mapError(err error) (int, string, string) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, string(domain.ErrCodeUnavailable), "storage unavailable"
	}

	switch dErr.Code {
	case domain.ErrCodeAuthRequired:
		return http.StatusUnauthorized, string(domain.ErrCodeAuthRequired), dErr.Message
	case domain.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized, string(domain.ErrCodeInvalidCredentials), dErr.Message
	case domain.ErrCodeForbidden, domain.ErrCodeNotFound:
		return http.StatusNotFound, string(domain.ErrCodeNotFound), "resource not found"
	case domain.ErrCodeValidation:
		return http.StatusBadRequest, string(domain.ErrCodeValidation), dErr.Message
	case domain.ErrCodeDuplicateEmail:
		return http.StatusBadRequest, string(domain.ErrCodeDuplicateEmail), dErr.Message
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeUnavailable), "storage unavailable"
	}
}
