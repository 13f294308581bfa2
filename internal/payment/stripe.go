// Package payment integrates the Stripe billing flow: checkout session
// creation and webhook event verification.
//
// The rest of the application never sees Stripe types. Webhook payloads are
// verified here and translated into the small Event type, which the billing
// service consumes.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Event types the billing service acts on. Everything else is acknowledged
// and ignored.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutCompleted carries the fields we need from a completed checkout
// session. UserID comes back through client_reference_id, which we set when
// creating the session.
type CheckoutCompleted struct {
	UserID         string
	SubscriptionID string
	CustomerEmail  string
}

// SubscriptionChange carries a processor-side subscription update. ExternalID
// is Stripe's subscription id.
type SubscriptionChange struct {
	ExternalID string
	Status     string
	PeriodEnd  *time.Time
}

// Event is a verified, decoded webhook delivery. Exactly one of Checkout and
// Subscription is set for the event types we handle; both are nil for types
// we ignore.
type Event struct {
	ID           string
	Type         string
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionChange
}

// Client wraps the Stripe API for subscription checkout and webhooks.
type Client struct {
	webhookSecret string
	priceID       string
}

// NewClient configures the Stripe SDK with the account's secret key.
// priceID is the recurring price the checkout sells; webhookSecret signs
// webhook deliveries.
func NewClient(secretKey, webhookSecret, priceID string) *Client {
	stripe.Key = secretKey
	return &Client{webhookSecret: webhookSecret, priceID: priceID}
}

// CreateCheckoutSession opens a subscription checkout for the user and
// returns the hosted payment page URL. The internal user id rides along as
// client_reference_id so the completion webhook can find the account.
func (c *Client) CreateCheckoutSession(ctx context.Context, userID, email, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		CustomerEmail:      stripe.String(email),
		ClientReferenceID:  stripe.String(userID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.AddMetadata("userId", userID)

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("payment: creating checkout session: %w", err)
	}

	return s.URL, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload and
// decodes the event. An invalid signature is an error; an event type we don't
// handle decodes to an Event with neither payload set.
func (c *Client) VerifyEvent(payload []byte, signature string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("payment: webhook signature verification failed: %w", err)
	}

	return parseEvent(stripeEvent.ID, string(stripeEvent.Type), stripeEvent.Data.Raw)
}

// checkoutSessionData and subscriptionData mirror just the fields we read
// from Stripe's event payloads.
type checkoutSessionData struct {
	ClientReferenceID string `json:"client_reference_id"`
	Subscription      string `json:"subscription"`
	CustomerEmail     string `json:"customer_email"`
}

type subscriptionData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

func parseEvent(id, eventType string, raw []byte) (Event, error) {
	event := Event{ID: id, Type: eventType}

	switch eventType {
	case EventCheckoutCompleted:
		var data checkoutSessionData
		if err := json.Unmarshal(raw, &data); err != nil {
			return Event{}, fmt.Errorf("payment: decoding checkout session: %w", err)
		}
		event.Checkout = &CheckoutCompleted{
			UserID:         data.ClientReferenceID,
			SubscriptionID: data.Subscription,
			CustomerEmail:  data.CustomerEmail,
		}

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var data subscriptionData
		if err := json.Unmarshal(raw, &data); err != nil {
			return Event{}, fmt.Errorf("payment: decoding subscription: %w", err)
		}
		change := &SubscriptionChange{
			ExternalID: data.ID,
			Status:     data.Status,
		}
		if data.CurrentPeriodEnd > 0 {
			end := time.Unix(data.CurrentPeriodEnd, 0)
			change.PeriodEnd = &end
		}
		event.Subscription = change
	}

	return event, nil
}
