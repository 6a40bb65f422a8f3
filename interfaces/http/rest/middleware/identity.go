package middleware

import (
	"net/http"
	"strings"

	"gooey-backend/pkg/auth"
	pkgerrors "gooey-backend/pkg/errors"

	"go.uber.org/zap"
)

// Identify resolves the caller. Requests without a token act as the guest;
// a token that is present must be valid. With no validator configured every
// caller is the guest.
func Identify(validator *auth.JWTValidator, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if validator == nil || token == "" {
				next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), auth.GuestIdentity())))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError("invalid token"))
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: claims.UserID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects callers that exceed their bucket. Guests are keyed by
// address, authenticated callers by user id.
func RateLimit(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r)
			if id := auth.FromContext(r.Context()); !id.Guest {
				key = "user:" + id.UserID
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				errs.Handle(w, r, err)
				return
			}
			if !allowed {
				errs.HandleStatus(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token from the Authorization header or,
// for websocket upgrades that cannot set headers, the token query parameter
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(header)
	}
	return r.URL.Query().Get("token")
}

// clientIP strips the port from RemoteAddr, which RealIP has already rewritten
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
