package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pixmint/pixmint/internal/cache"
	"github.com/pixmint/pixmint/internal/handler/dto"
	"github.com/pixmint/pixmint/internal/identity"
	"github.com/pixmint/pixmint/internal/metrics"
	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/service"
)

// IdentityHandler is the inbound gateway for identity-provider deliveries.
// It owns the transport concerns (signature, dedupe, ack policy) and hands
// decoded events to the reconciler.
type IdentityHandler struct {
	reconciler *service.Reconciler
	verifier   *identity.Verifier
	cache      *cache.Cache
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewIdentityHandler creates an IdentityHandler. cache may be nil, in which
// case redeliveries are not short-circuited; the reconciler's idempotent
// mutations keep the outcome correct either way.
func NewIdentityHandler(reconciler *service.Reconciler, verifier *identity.Verifier, deliveryCache *cache.Cache, logger *slog.Logger, recorder metrics.Recorder) *IdentityHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IdentityHandler{
		reconciler: reconciler,
		verifier:   verifier,
		cache:      deliveryCache,
		logger:     logger.With("handler", "identity"),
		metrics:    recorder,
	}
}

// HandleEvent handles POST /api/v1/webhooks/identity.
//
// Ack policy: every authenticated, well-formed delivery is answered with
// 200, including event types this service does not handle. Anything else
// makes the provider redeliver forever.
func (h *IdentityHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read request body")
		return
	}

	if h.verifier.Enabled() {
		if err := h.verifier.Verify(r.Header.Get(identity.SignatureHeader), body); err != nil {
			h.logger.Warn("rejected delivery", "error", err)
			writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "delivery signature verification failed")
			return
		}
	}

	evt, err := model.DecodeIdentityEvent(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_EVENT", "event payload could not be decoded")
		return
	}

	if evt.Kind == model.EventUnknown {
		h.logger.Info("acknowledged unhandled event type")
		h.metrics.IncEventSkipped("unknown_kind")
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	if h.firstDelivery(r) {
		h.process(w, r, evt)
		return
	}

	h.logger.Info("acknowledged redelivery", "delivery_id", r.Header.Get(identity.DeliveryIDHeader))
	h.metrics.IncEventSkipped("redelivery")
	writeJSON(w, http.StatusOK, dto.EventAckResponse{Message: "OK"})
}

// firstDelivery reports whether this delivery id was seen before. Without a
// cache, or when Redis is unreachable, every delivery counts as first.
func (h *IdentityHandler) firstDelivery(r *http.Request) bool {
	deliveryID := r.Header.Get(identity.DeliveryIDHeader)
	if h.cache == nil || deliveryID == "" {
		return true
	}

	first, err := h.cache.MarkDelivery(r.Context(), deliveryID)
	if err != nil {
		h.logger.Warn("delivery dedupe unavailable", "error", err)
		return true
	}
	return first
}

// process applies the event and writes the acknowledgement.
func (h *IdentityHandler) process(w http.ResponseWriter, r *http.Request, evt *model.IdentityEvent) {
	result, err := h.reconciler.Apply(r.Context(), evt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEvent):
			writeError(w, http.StatusBadRequest, "INVALID_EVENT", "event is missing required data")
		case errors.Is(err, service.ErrDuplicateUser):
			writeError(w, http.StatusConflict, "USER_EXISTS", "event conflicts with an existing user record")
		default:
			h.logger.Error("failed to apply event", "kind", evt.Kind.String(), "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to apply event")
		}
		return
	}

	ack := dto.EventAckResponse{Message: "OK"}
	if result.User != nil {
		ack.User = dto.ToUserResponse(result.User)
	}
	writeJSON(w, http.StatusOK, ack)
}
