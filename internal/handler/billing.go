package handler

import (
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/service"
)

// BillingHandler serves subscription checkout.
type BillingHandler struct {
	billing *service.BillingService
	logger  *slog.Logger
}

func NewBillingHandler(billing *service.BillingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, logger: logger}
}

// HandleCheckout opens a PRO checkout session and returns the payment page
// URL for the client to redirect to. POST /api/billing/checkout
func (h *BillingHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := h.billing.Checkout(r.Context(), userID)
	if err != nil {
		h.logger.Error("checkout session failed",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"url": url})
}

// HandleSubscription returns the caller's subscription state.
// GET /api/billing/subscription
func (h *BillingHandler) HandleSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.billing.Subscription(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, sub)
}
