package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskvault/backend/api/transport"
	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/auth"
)

const identityKey = "caller_identity"

// JWTAuth verifies the bearer credential on every request and stores
// the extracted identity for downstream handlers. No store access
// happens before this check passes.
func JWTAuth(verifier *auth.Verifier, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "authentication required")
				return
			}

			ident, err := verifier.Verify(tokenString)
			if err != nil {
				logger.Warn("credential rejected", zap.Error(err))
				message := "invalid token"
				var dErr *domain.Error
				if errors.As(err, &dErr) {
					message = dErr.Message
				}
				unauthorized(ctx, message)
				return
			}

			ctx.SetUserValue(identityKey, ident)
			next(ctx)
		}
	}
}

// Identity returns the verified caller identity stored by JWTAuth, or
// nil when the request never passed the middleware.
func Identity(ctx *fasthttp.RequestCtx) *auth.Identity {
	ident, _ := ctx.UserValue(identityKey).(*auth.Identity)
	return ident
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeAuthRequired), message))
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
