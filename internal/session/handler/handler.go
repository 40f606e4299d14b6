package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proofgate/internal/platform/metrics"
	"proofgate/internal/session"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/audit"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/requestcontext"
)

// Service defines the interface for session operations.
type Service interface {
	CreateSession(ctx context.Context, scopeID domain.ScopeID, requestedDisclosures []domain.DisclosureField, attestationKinds []domain.AttestationKind) (*session.VerificationSession, error)
}

// Auditor receives session lifecycle events. A nil auditor disables emission.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler wires the session endpoint to the broker.
type Handler struct {
	service Service
	auditor Auditor
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a session handler with its dependencies.
func New(service Service, auditor Auditor, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		auditor: auditor,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts the session endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/session", h.HandleCreate)
}

// HandleCreate handles POST /session requests.
//
// The error envelope here is the session wire protocol's own:
// {"reasonCode":"ConfigurationError"} with a 400 status. Relying clients
// branch on reasonCode, not on the shared error envelope.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSessionRequest](w, r, func(w http.ResponseWriter, err error) {
		h.writeConfigurationError(ctx, w, requestID, err)
	})
	if !ok {
		return
	}

	sess, err := h.service.CreateSession(ctx, req.ParsedScope(), req.ParsedDisclosures(), req.ParsedKinds())
	if err != nil {
		h.writeConfigurationError(ctx, w, requestID, err)
		return
	}

	h.metrics.IncrementSessionsCreated()
	h.emitCreated(ctx, requestID, sess)
	h.logger.InfoContext(ctx, "session created",
		"request_id", requestID,
		"scope_id", sess.ScopeID,
		"correlation_user_id", sess.CorrelationUserID,
	)

	httputil.WriteJSON(w, http.StatusCreated, FromSession(sess))
}

func (h *Handler) emitCreated(ctx context.Context, requestID string, sess *session.VerificationSession) {
	if h.auditor == nil {
		return
	}
	event := audit.Event{
		Category:      audit.EventSessionCreated.Category(),
		Timestamp:     requestcontext.Now(ctx),
		Action:        string(audit.EventSessionCreated),
		ScopeID:       sess.ScopeID.String(),
		CorrelationID: sess.CorrelationUserID.String(),
		RequestID:     requestID,
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "audit emit failed",
			"request_id", requestID,
			"action", event.Action,
			"error", err,
		)
	}
}

func (h *Handler) writeConfigurationError(ctx context.Context, w http.ResponseWriter, requestID string, err error) {
	h.logger.WarnContext(ctx, "session creation rejected",
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
		"reasonCode": "ConfigurationError",
	})
}
