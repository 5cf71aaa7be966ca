package domain

import (
	"errors"
	"strings"
	"time"
)

// Product is a catalog entry. Stock is the authoritative available count and
// never goes negative; decrements happen only inside the fulfillment
// transaction.
type Product struct {
	ID              string    `json:"id"`
	CategoryID      string    `json:"category_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Image           string    `json:"image"`
	PriceCents      int64     `json:"price_cents"`
	Stock           int       `json:"stock"`
	StripePriceID   string    `json:"stripe_price_id"`
	StripeProductID string    `json:"stripe_product_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate ensures the product adheres to catalog constraints.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.PriceCents <= 0 {
		return errors.New("price_cents must be positive")
	}
	if p.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	if p.StripePriceID != "" && !strings.HasPrefix(p.StripePriceID, "price_") {
		return errors.New("stripe_price_id must be a valid price reference")
	}
	return nil
}
