package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"proofgate/internal/receipt"
	"proofgate/internal/verifier"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/requestcontext"
)

// Service runs proof verifications.
type Service interface {
	Verify(ctx context.Context, sub verifier.Submission) (*verifier.Result, error)
}

// Handler exposes POST /verify.
type Handler struct {
	service  Service
	receipts *receipt.Service
	logger   *slog.Logger
}

// New constructs the verify handler. receipts may be nil when receipt
// issuance is not configured.
func New(service Service, receipts *receipt.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		receipts: receipts,
		logger:   logger,
	}
}

// Register mounts the verify endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
}

// HandleVerify handles POST /verify.
//
// Wire contract: crypto and policy failures return 200 with an in-body error
// envelope; missing required fields return 404 with {"message": ...};
// anything unexpected returns 500 with the UNKNOWN_ERROR envelope and no
// internal detail.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.ErrorContext(ctx, "panic during verification",
				"request_id", requestID,
				"panic", rec,
			)
			h.writeUnknownError(w)
		}
	}()

	var req VerifyRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"message": "request body must be a JSON proof submission",
		})
		return
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"message": strings.Join(missing, ", ") + " required",
		})
		return
	}

	result, err := h.service.Verify(ctx, req.Submission())
	if err != nil {
		h.writeVerifyError(ctx, w, requestID, err)
		return
	}

	response := FromResult(result)
	if result.Valid {
		h.attachReceipt(ctx, &response, req, result)
		h.logger.InfoContext(ctx, "verification passed", "request_id", requestID)
	} else {
		h.logger.InfoContext(ctx, "verification rejected",
			"request_id", requestID,
			"error_code", response.ErrorCode,
			"details", response.Details,
		)
	}

	httputil.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) attachReceipt(ctx context.Context, response *VerifyResponse, req VerifyRequest, result *verifier.Result) {
	if h.receipts == nil || !h.receipts.Enabled() || result.Disclosure == nil {
		return
	}

	kind, token, err := req.parsedIdentity()
	if err != nil {
		// Verify already validated both; this cannot happen.
		return
	}

	signed, err := h.receipts.Issue(token, kind, *result.Disclosure)
	if err != nil {
		// A receipt is a convenience, not part of the trust decision.
		h.logger.WarnContext(ctx, "receipt issuance failed", "error", err)
		return
	}
	response.Receipt = signed
}

func (h *Handler) writeVerifyError(ctx context.Context, w http.ResponseWriter, requestID string, err error) {
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeMalformedRequest, dErrors.CodeVerificationTimeout:
		h.logger.WarnContext(ctx, "verification rejected before crypto outcome",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, dErrors.ToHTTPStatus(code), VerifyResponse{
			Status:    "error",
			Result:    false,
			Reason:    dErrors.MessageOf(err),
			ErrorCode: code.WireCode(),
			Details:   dErrors.DetailsOf(err),
		})
	default:
		h.logger.ErrorContext(ctx, "verification failed unexpectedly",
			"request_id", requestID,
			"error", err,
		)
		h.writeUnknownError(w)
	}
}

func (h *Handler) writeUnknownError(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusInternalServerError, VerifyResponse{
		Status:    "error",
		Result:    false,
		Reason:    "unexpected internal fault",
		ErrorCode: "UNKNOWN_ERROR",
	})
}

// parsedIdentity re-parses the attestation kind and correlation token for
// receipt claims.
func (r VerifyRequest) parsedIdentity() (domain.AttestationKind, domain.CorrelationToken, error) {
	kind, err := domain.ParseAttestationKind(r.AttestationID)
	if err != nil {
		return "", domain.CorrelationToken{}, err
	}
	token, err := domain.ParseCorrelationToken(r.UserContextData)
	if err != nil {
		return "", domain.CorrelationToken{}, err
	}
	return kind, token, nil
}
