package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"recordgate/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	// Subject identifies the caller and becomes the query originator.
	Subject string
	TokenID string
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject as the request originator.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				writeUnauthorized(w, r, logger, "unauthorized access - missing token", nil,
					`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				writeUnauthorized(w, r, logger, "unauthorized access - invalid token", err,
					`{"error":"unauthorized","error_description":"Invalid or expired token"}`)
				return
			}

			ctx := requestcontext.WithOriginator(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, cause error, body string) {
	ctx := r.Context()
	requestID := GetRequestID(ctx)
	if logger != nil {
		args := []any{"request_id", requestID}
		if cause != nil {
			args = append(args, "error", cause)
		}
		logger.WarnContext(ctx, msg, args...)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte(body)); err != nil && logger != nil {
		logger.ErrorContext(ctx, "failed to write unauthorized response",
			"error", err,
			"request_id", requestID,
		)
	}
}
