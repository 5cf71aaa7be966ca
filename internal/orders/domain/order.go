package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus captures the shipping lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
)

// PaymentStatus captures the payment lifecycle of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// ErrInsufficientStock is returned when a fulfillment attempt requests more
// units than are currently in stock for any line item. The order is left
// untouched so the attempt can be retried after restock.
var ErrInsufficientStock = errors.New("insufficient stock")

// LineItem is a snapshot of a product taken at order-creation time together
// with the requested quantity. Later catalog changes never alter it.
type LineItem struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	StripePriceID string `json:"stripe_price_id"`
	Quantity      int    `json:"quantity"`
}

// Address is the shipping destination, owned by the order and immutable once
// attached.
type Address struct {
	ID         string `json:"id"`
	Line1      string `json:"line_1"`
	Line2      string `json:"line_2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Order represents a purchase request managed by the system.
type Order struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	Items             []LineItem    `json:"items"`
	Address           Address       `json:"address"`
	OrderStatus       OrderStatus   `json:"order_status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	CheckoutSessionID string        `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return errors.New("user_id is required")
	}
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("item product_id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
	}
	return o.Address.Validate()
}

// Validate checks the required shipping fields.
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return errors.New("address line_1 is required")
	case strings.TrimSpace(a.City) == "":
		return errors.New("address city is required")
	case strings.TrimSpace(a.PostalCode) == "":
		return errors.New("address postal_code is required")
	case strings.TrimSpace(a.Phone) == "":
		return errors.New("address phone is required")
	}
	return nil
}

// Fulfilled reports whether the order has already been fulfilled. Fulfillment
// is idempotent per order: once paid, repeated triggers are no-ops.
func (o Order) Fulfilled() bool {
	return o.PaymentStatus == PaymentPaid
}

// Fulfillable reports whether the order may transition to CONFIRMED/PAID.
// Anything other than a pending order is either already fulfilled or in a
// terminal state that fulfillment must not touch.
func (o Order) Fulfillable() bool {
	return o.OrderStatus == StatusPending && o.PaymentStatus == PaymentPending
}

// Cancellable reports whether the order may still be cancelled by the user.
func (o Order) Cancellable() bool {
	return o.OrderStatus == StatusPending && o.PaymentStatus == PaymentPending
}

// IsTerminal indicates whether the order is in a terminal shipping state.
func (o Order) IsTerminal() bool {
	switch o.OrderStatus {
	case StatusCancelled, StatusDelivered:
		return true
	default:
		return false
	}
}

// TotalCents returns the order total from the snapshotted item prices.
func (o Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}
