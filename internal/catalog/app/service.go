package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mihindugunarathne/FED-backend/internal/catalog/domain"
	"github.com/mihindugunarathne/FED-backend/internal/catalog/ports"
)

// Service bundles catalog use cases. It is also the product reader the order
// flow snapshots from.
type Service struct {
	repo   ports.ProductRepository
	prices ports.PriceRegistrar
	logger *slog.Logger
}

// NewService wires required dependencies.
func NewService(repo ports.ProductRepository, prices ports.PriceRegistrar, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		logger: logger,
	}
}

// CreateProductInput captures payload for creating a product.
type CreateProductInput struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
}

func (in CreateProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if in.PriceCents <= 0 {
		return errors.New("price_cents must be positive")
	}
	if in.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}

// CreateProduct registers the product with the payment processor and persists
// it with the returned price reference. Admin-only at the boundary.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	productRef, priceRef, err := s.prices.RegisterPrice(ctx, input.Name, input.Description, input.PriceCents)
	if err != nil {
		return nil, fmt.Errorf("register processor price: %w", err)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:              uuid.NewString(),
		CategoryID:      input.CategoryID,
		Name:            input.Name,
		Description:     input.Description,
		Image:           input.Image,
		PriceCents:      input.PriceCents,
		Stock:           input.Stock,
		StripePriceID:   priceRef,
		StripeProductID: productRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		"product_id", product.ID,
		"stripe_price_id", product.StripePriceID,
	)

	return &product, nil
}

// GetProduct retrieves a product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts returns products, optionally filtered by category.
func (s *Service) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return s.repo.List(ctx, ports.ListFilter{CategoryID: categoryID})
}
