package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

// IdentityEvent is the provider's webhook payload. Only user.created and
// user.updated carry data we act on; everything else is acknowledged and
// dropped.
type IdentityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"data"`
}

// Email returns the primary email address, empty if the provider sent none.
func (e *IdentityEvent) Email() string {
	if len(e.Data.EmailAddresses) == 0 {
		return ""
	}
	return e.Data.EmailAddresses[0].EmailAddress
}

// WebhookVerifier checks the svix signature on identity webhook deliveries.
type WebhookVerifier struct {
	wh *svix.Webhook
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("auth: creating webhook verifier: %w", err)
	}
	return &WebhookVerifier{wh: wh}, nil
}

// Verify checks the svix-id/svix-timestamp/svix-signature headers against the
// raw payload and decodes the event. An invalid signature means the request
// did not come from the identity provider.
func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) (*IdentityEvent, error) {
	if err := v.wh.Verify(payload, headers); err != nil {
		return nil, fmt.Errorf("auth: webhook signature verification failed: %w", err)
	}

	var event IdentityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("auth: decoding webhook payload: %w", err)
	}

	return &event, nil
}
