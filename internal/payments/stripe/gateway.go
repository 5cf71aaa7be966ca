package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

const orderIDMetadataKey = "order_id"

// Gateway adapts the Stripe API to the checkout ports. It owns its client
// instance; nothing else in the process talks to Stripe.
type Gateway struct {
	api           *client.API
	webhookSecret string
	returnURL     string
}

// Config carries the Stripe credentials and checkout return URL.
type Config struct {
	SecretKey     string
	WebhookSecret string
	ReturnURL     string
}

// NewGateway constructs a Gateway with its own API client.
func NewGateway(cfg Config) *Gateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Gateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		returnURL:     cfg.ReturnURL,
	}
}

// CreateSession opens an embedded checkout session for the order. The order
// id rides along as opaque session metadata so fulfillment can correlate the
// two later.
func (g *Gateway) CreateSession(ctx context.Context, order domain.Order) (*ports.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.StripePriceID),
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		UIMode:    stripe.String("embedded"),
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		ReturnURL: stripe.String(g.returnURL),
		LineItems: lineItems,
	}
	params.Context = ctx
	params.AddMetadata(orderIDMetadataKey, order.ID)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}

	return &ports.CheckoutSession{
		ID:           session.ID,
		ClientSecret: session.ClientSecret,
	}, nil
}

// GetSession reports the processor-side state of a checkout session.
func (g *Gateway) GetSession(ctx context.Context, sessionID string) (*ports.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve stripe checkout session: %w", err)
	}

	status := &ports.SessionStatus{
		SessionID:        session.ID,
		OrderID:          session.Metadata[orderIDMetadataKey],
		PaymentCompleted: session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Status:           string(session.Status),
	}
	if session.CustomerDetails != nil {
		status.CustomerEmail = session.CustomerDetails.Email
	}

	return status, nil
}

// VerifyWebhook checks the Stripe signature and extracts the session
// reference for checkout events.
func (g *Gateway) VerifyWebhook(payload []byte, signatureHeader string) (*ports.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	result := &ports.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if event.Type == stripe.EventTypeCheckoutSessionCompleted {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout session payload: %w", err)
		}
		result.SessionID = session.ID
	}

	return result, nil
}

// RegisterPrice creates the processor-side product and price for a new
// catalog entry and returns both references.
func (g *Gateway) RegisterPrice(ctx context.Context, name, description string, priceCents int64) (string, string, error) {
	productParams := &stripe.ProductParams{
		Name: stripe.String(name),
	}
	if description != "" {
		productParams.Description = stripe.String(description)
	}
	productParams.Context = ctx

	product, err := g.api.Products.New(productParams)
	if err != nil {
		return "", "", fmt.Errorf("create stripe product: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(product.ID),
		UnitAmount: stripe.Int64(priceCents),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	}
	priceParams.Context = ctx

	price, err := g.api.Prices.New(priceParams)
	if err != nil {
		return "", "", fmt.Errorf("create stripe price: %w", err)
	}

	return product.ID, price.ID, nil
}
