package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/payment"
	"github.com/alternagen/api/internal/repository"
)

// CheckoutClient opens hosted payment pages. Implemented by payment.Client;
// tests use a stub.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, userID, email, successURL, cancelURL string) (string, error)
}

// BillingService handles the subscription lifecycle: checkout on the way in,
// processor webhooks for every state change after that. Subscription rows
// are only ever written here.
type BillingService struct {
	checkout      CheckoutClient
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	credits       repository.CreditsRepository
	events        repository.WebhookEventRepository
	frontendURL   string
	logger        *slog.Logger
}

func NewBillingService(
	checkout CheckoutClient,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	credits repository.CreditsRepository,
	events repository.WebhookEventRepository,
	frontendURL string,
	logger *slog.Logger,
) *BillingService {
	return &BillingService{
		checkout:      checkout,
		users:         users,
		subscriptions: subscriptions,
		credits:       credits,
		events:        events,
		frontendURL:   frontendURL,
		logger:        logger,
	}
}

// Checkout opens a PRO subscription checkout for the user and returns the
// payment page URL.
func (s *BillingService) Checkout(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.checkout.CreateCheckoutSession(ctx, userID, user.Email,
		s.frontendURL+"/success", s.frontendURL+"/pricing")
	if err != nil {
		s.logger.Error("failed to create checkout session",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	return url, nil
}

// Subscription returns the user's subscription row, NotFound if they never
// subscribed.
func (s *BillingService) Subscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return s.subscriptions.GetSubscriptionByUserID(ctx, userID)
}

// HandleEvent applies one verified processor event.
//
// The idempotency guard runs first: an event id that was already admitted is
// dropped without touching subscription state, so processor retries and
// concurrent duplicate deliveries apply exactly once. Event types we don't
// recognize are admitted and skipped — acknowledging them stops the
// processor from retrying forever.
func (s *BillingService) HandleEvent(ctx context.Context, event payment.Event) error {
	fresh, err := s.events.AdmitWebhookEvent(ctx, event.ID, event.Type)
	if err != nil {
		return fmt.Errorf("admitting webhook event: %w", err)
	}
	if !fresh {
		s.logger.Info("duplicate webhook event dropped",
			slog.String("eventId", event.ID),
			slog.String("type", event.Type),
		)
		return nil
	}

	switch {
	case event.Checkout != nil:
		return s.applyCheckoutCompleted(ctx, event.Checkout)
	case event.Subscription != nil:
		if event.Type == payment.EventSubscriptionDeleted && event.Subscription.Status == "" {
			event.Subscription.Status = model.SubscriptionCanceled
		}
		return s.applySubscriptionChange(ctx, event.Subscription)
	default:
		s.logger.Info("unhandled webhook event type",
			slog.String("eventId", event.ID),
			slog.String("type", event.Type),
		)
		return nil
	}
}

func (s *BillingService) applyCheckoutCompleted(ctx context.Context, checkout *payment.CheckoutCompleted) error {
	if checkout.UserID == "" {
		s.logger.Warn("checkout completed without a client reference, skipping")
		return nil
	}

	sub := &model.Subscription{
		UserID:     checkout.UserID,
		ExternalID: checkout.SubscriptionID,
		PlanCode:   model.PlanPro,
		Status:     model.SubscriptionActive,
	}
	if err := s.subscriptions.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("recording subscription: %w", err)
	}

	if err := s.credits.SetSubscribed(ctx, checkout.UserID, true, nil); err != nil {
		return fmt.Errorf("marking credits subscribed: %w", err)
	}

	s.logger.Info("subscription activated",
		slog.String("userId", checkout.UserID),
		slog.String("subscriptionId", checkout.SubscriptionID),
	)

	return nil
}

func (s *BillingService) applySubscriptionChange(ctx context.Context, change *payment.SubscriptionChange) error {
	userID, err := s.subscriptions.UpdateSubscriptionByExternalID(ctx, change.ExternalID, change.Status, change.PeriodEnd)
	if err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}
	if userID == "" {
		// Event for a subscription we never recorded. Nothing to mirror.
		s.logger.Warn("subscription event for unknown subscription",
			slog.String("subscriptionId", change.ExternalID),
		)
		return nil
	}

	active := change.Status == model.SubscriptionActive
	if err := s.credits.SetSubscribed(ctx, userID, active, change.PeriodEnd); err != nil {
		return fmt.Errorf("mirroring subscription onto credits: %w", err)
	}

	s.logger.Info("subscription updated",
		slog.String("userId", userID),
		slog.String("subscriptionId", change.ExternalID),
		slog.String("status", change.Status),
	)

	return nil
}
