package access

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
)

// Authenticate attaches the session of a valid bearer token to the request
// context. Requests without a valid token pass through unauthenticated and
// are stopped by RequireRole.
func Authenticate(issuer *TokenIssuer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			s, err := issuer.Parse(token)
			if err != nil {
				logger.Debug("rejected session token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireRole answers 401 when the request has no session and 403 when the
// session role is not among roles.
func RequireRole(logger *zap.Logger, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok {
				writeError(w, logger, uuid.New().String(), apperrors.NewUnauthorizedError("a valid session token is required"))
				return
			}

			for _, role := range roles {
				if s.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("role not allowed",
				zap.String("sessionId", s.ID),
				zap.String("role", string(s.Role)),
				zap.String("path", r.URL.Path),
			)
			writeError(w, logger, uuid.New().String(), apperrors.NewForbiddenError("the "+string(s.Role)+" role may not perform this operation"))
		})
	}
}

// RequireView answers 403 when the session was opened on a different view.
// It runs after RequireRole, so a missing session is answered with 401.
func RequireView(logger *zap.Logger, view View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok {
				writeError(w, logger, uuid.New().String(), apperrors.NewUnauthorizedError("a valid session token is required"))
				return
			}
			if s.View != view {
				logger.Warn("view not allowed",
					zap.String("sessionId", s.ID),
					zap.String("view", string(s.View)),
					zap.String("path", r.URL.Path),
				)
				writeError(w, logger, uuid.New().String(), apperrors.NewForbiddenError("the "+string(s.View)+" view may not perform this operation"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// writeError answers with the shared error body. Unauthorized and forbidden
// errors keep their message; anything else is reported as internal.
func writeError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred"
	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	} else if _, ok := apperrors.IsForbiddenError(err); ok {
		status, code, message = http.StatusForbidden, "FORBIDDEN", err.Error()
	}

	writeJSON(w, logger, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
