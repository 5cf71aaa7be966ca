package ports

import (
	"context"

	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
)

// CheckoutSession is the processor-side session opened for an order.
type CheckoutSession struct {
	ID           string
	ClientSecret string
}

// SessionStatus is the processor-reported state of a checkout session. The
// core never inspects processor payloads beyond this shape.
type SessionStatus struct {
	SessionID        string
	OrderID          string
	PaymentCompleted bool
	Status           string
	CustomerEmail    string
}

// WebhookEvent is a signature-verified inbound processor event.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
}

// CheckoutGateway is the payment-processor collaborator: it binds a payment
// session to an order and later reports whether that payment completed.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, order domain.Order) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// WebhookVerifier authenticates inbound webhook payloads against the
// processor's signing secret.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
