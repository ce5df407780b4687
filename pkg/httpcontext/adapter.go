package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/taskvault/backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// Adapter derives a deadline-bearing stdlib context from a fasthttp
// request. Each request gets an ID, taken from the incoming header when
// present, which is echoed back in the response and attached to the
// context for log correlation.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

func (a *Adapter) Attach(rctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)

	id := strings.TrimSpace(string(rctx.Request.Header.Peek(requestIDHeader)))
	if id == "" {
		id = uuid.NewString()
	}
	rctx.Response.Header.Set(requestIDHeader, id)

	return appLogger.ContextWithRequestID(ctx, id), cancel
}
