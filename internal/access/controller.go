package access

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "linentrack/internal/errors"
)

type createSessionRequest struct {
	Code string `json:"code"`
	View string `json:"view"`
}

type sessionResponse struct {
	TraceID   string    `json:"traceId"`
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	View      View      `json:"view"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

type SessionController struct {
	gate   *Gate
	issuer *TokenIssuer
	logger *zap.Logger
}

func NewSessionController(gate *Gate, issuer *TokenIssuer, logger *zap.Logger) *SessionController {
	return &SessionController{
		gate:   gate,
		issuer: issuer,
		logger: logger,
	}
}

// CreateSession exchanges a passcode for a session token.
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeJSON(w, c.logger, http.StatusBadRequest, validationErrorResponse{
			TraceID: traceID,
			Error:   "VALIDATION_ERROR",
			Message: "invalid JSON body",
			Details: []apperrors.ValidationDetail{{Field: "body", Message: "request body must be valid JSON"}},
		})
		return
	}

	role, err := c.gate.Authenticate(req.Code)
	if err != nil {
		logger.Warn("access code rejected")
		writeError(w, logger, traceID, err)
		return
	}

	view := DefaultView(role)
	if req.View != "" {
		view = View(req.View)
	}
	if !role.Allows(view) {
		writeError(w, logger, traceID, apperrors.NewForbiddenError("the "+string(role)+" role may not open the "+string(view)+" view"))
		return
	}

	s, token, err := c.issuer.Issue(role, view)
	if err != nil {
		logger.Error("failed to issue session token", zap.Error(err))
		writeError(w, logger, traceID, err)
		return
	}

	logger.Info("session opened", zap.String("sessionId", s.ID), zap.String("role", string(role)), zap.String("view", string(view)))

	writeJSON(w, c.logger, http.StatusCreated, sessionResponse{
		TraceID:   traceID,
		SessionID: s.ID,
		Token:     token,
		Role:      s.Role,
		View:      s.View,
		ExpiresAt: s.ExpiresAt,
	})
}
