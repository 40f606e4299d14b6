package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proofgate/internal/profile"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/requestcontext"
)

// Service looks up subject enrichment documents.
type Service interface {
	Get(ctx context.Context, key domain.SubjectKey) (*profile.Document, error)
}

// Handler exposes GET /profile/{subjectKey}.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the profile handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the profile endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/profile/{subjectKey}", h.HandleGet)
}

// HandleGet handles GET /profile/{subjectKey}. Upstream failures surface as
// 502, upstream timeouts as 504; both are retryable by the caller.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	key, err := domain.ParseSubjectKey(chi.URLParam(r, "subjectKey"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Get(ctx, key)
	if err != nil {
		code := dErrors.CodeOf(err)
		if code == dErrors.CodeUpstream || code == dErrors.CodeUpstreamTimeout {
			h.logger.WarnContext(ctx, "profile fetch failed",
				"request_id", requestID,
				"subject_key", key,
				"error", err,
			)
		} else if code == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "profile lookup failed unexpectedly",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, doc)
}
