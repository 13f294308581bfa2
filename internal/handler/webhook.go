package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/auth"
	"github.com/alternagen/api/internal/payment"
	"github.com/alternagen/api/internal/service"
)

// Webhook bodies are small JSON documents; cap reads so a misbehaving
// sender can't hold the connection with an endless body.
const maxWebhookBody = 1 << 20

// IdentityVerifier checks the signature on identity-provider deliveries.
type IdentityVerifier interface {
	Verify(payload []byte, headers http.Header) (*auth.IdentityEvent, error)
}

// PaymentVerifier checks the signature on payment-processor deliveries.
type PaymentVerifier interface {
	VerifyEvent(payload []byte, signature string) (payment.Event, error)
}

// WebhookHandler receives third-party deliveries. Both endpoints verify the
// signature against the raw body before any JSON decoding, and both return
// 200 for verified events we choose to ignore so the sender stops retrying.
type WebhookHandler struct {
	identity IdentityVerifier
	payments PaymentVerifier
	users    *service.UserService
	billing  *service.BillingService
	logger   *slog.Logger
}

func NewWebhookHandler(
	identity IdentityVerifier,
	payments PaymentVerifier,
	users *service.UserService,
	billing *service.BillingService,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		identity: identity,
		payments: payments,
		users:    users,
		billing:  billing,
		logger:   logger,
	}
}

// HandleIdentity processes identity-provider events.
// POST /api/webhooks/identity
func (h *WebhookHandler) HandleIdentity(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	event, err := h.identity.Verify(payload, r.Header)
	if err != nil {
		h.logger.Warn("identity webhook rejected", slog.String("error", err.Error()))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		_, err := h.users.CreateFromIdentity(r.Context(),
			event.Data.ID, event.Email(), event.Data.FirstName, event.Data.LastName)
		if err != nil {
			h.logger.Error("identity event failed",
				slog.String("type", event.Type),
				slog.String("error", err.Error()),
			)
			writeError(w, err)
			return
		}
	default:
		h.logger.Info("identity event ignored", slog.String("type", event.Type))
	}

	writeData(w, http.StatusOK, map[string]bool{"received": true})
}

// HandleStripe processes payment-processor events.
// POST /api/webhooks/stripe
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	event, err := h.payments.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("stripe webhook rejected", slog.String("error", err.Error()))
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if err := h.billing.HandleEvent(r.Context(), event); err != nil {
		h.logger.Error("stripe event failed",
			slog.String("eventId", event.ID),
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"received": true})
}
