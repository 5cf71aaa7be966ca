package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mihindugunarathne/FED-backend/internal/catalog/adapters/memory"
	"github.com/mihindugunarathne/FED-backend/internal/catalog/app"
	"github.com/mihindugunarathne/FED-backend/internal/catalog/ports"
)

type mockPriceRegistrar struct {
	calls int
	err   error
}

func (m *mockPriceRegistrar) RegisterPrice(ctx context.Context, name, description string, priceCents int64) (string, string, error) {
	m.calls++
	if m.err != nil {
		return "", "", m.err
	}
	return "prod_stripe_1", "price_stripe_1", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateProduct(t *testing.T) {
	t.Run("registers price and persists product", func(t *testing.T) {
		repo := memory.NewRepository()
		registrar := &mockPriceRegistrar{}
		service := app.NewService(repo, registrar, testLogger())

		product, err := service.CreateProduct(context.Background(), app.CreateProductInput{
			CategoryID:  "mugs",
			Name:        "Espresso Mug",
			Description: "Double-walled",
			PriceCents:  1500,
			Stock:       10,
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if product.ID == "" {
			t.Error("expected product ID to be generated")
		}

		if product.StripePriceID != "price_stripe_1" {
			t.Errorf("expected price reference price_stripe_1, got %s", product.StripePriceID)
		}

		if product.StripeProductID != "prod_stripe_1" {
			t.Errorf("expected product reference prod_stripe_1, got %s", product.StripeProductID)
		}

		if registrar.calls != 1 {
			t.Errorf("expected one registrar call, got %d", registrar.calls)
		}

		stored, err := repo.GetByID(context.Background(), product.ID)
		if err != nil {
			t.Fatalf("expected product to be persisted: %v", err)
		}

		if stored.Stock != 10 {
			t.Errorf("expected stock 10, got %d", stored.Stock)
		}
	})

	t.Run("rejects invalid input without calling the registrar", func(t *testing.T) {
		repo := memory.NewRepository()
		registrar := &mockPriceRegistrar{}
		service := app.NewService(repo, registrar, testLogger())

		tests := []struct {
			name  string
			input app.CreateProductInput
		}{
			{"missing name", app.CreateProductInput{PriceCents: 1500}},
			{"zero price", app.CreateProductInput{Name: "Mug"}},
			{"negative stock", app.CreateProductInput{Name: "Mug", PriceCents: 1500, Stock: -1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				product, err := service.CreateProduct(context.Background(), tt.input)
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if product != nil {
					t.Errorf("expected nil product, got %+v", product)
				}
			})
		}

		if registrar.calls != 0 {
			t.Errorf("expected no registrar calls on invalid input, got %d", registrar.calls)
		}
	})

	t.Run("returns error when price registration fails", func(t *testing.T) {
		repo := memory.NewRepository()
		registrar := &mockPriceRegistrar{err: errors.New("processor unavailable")}
		service := app.NewService(repo, registrar, testLogger())

		product, err := service.CreateProduct(context.Background(), app.CreateProductInput{
			Name:       "Espresso Mug",
			PriceCents: 1500,
		})

		if err == nil {
			t.Fatal("expected error, got nil")
		}

		if !strings.Contains(err.Error(), "register processor price") {
			t.Errorf("expected registration error, got: %v", err)
		}

		if product != nil {
			t.Errorf("expected nil product, got %+v", product)
		}

		products, err := repo.List(context.Background(), ports.ListFilter{})
		if err != nil {
			t.Fatalf("failed to list products: %v", err)
		}
		if len(products) != 0 {
			t.Errorf("expected nothing persisted, got %d products", len(products))
		}
	})
}

func TestGetProduct(t *testing.T) {
	repo := memory.NewRepository()
	service := app.NewService(repo, &mockPriceRegistrar{}, testLogger())

	created, err := service.CreateProduct(context.Background(), app.CreateProductInput{
		Name:       "Espresso Mug",
		PriceCents: 1500,
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	product, err := service.GetProduct(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if product.Name != "Espresso Mug" {
		t.Errorf("expected name Espresso Mug, got %s", product.Name)
	}

	if _, err := service.GetProduct(context.Background(), "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	repo := memory.NewRepository()
	service := app.NewService(repo, &mockPriceRegistrar{}, testLogger())

	seed := []app.CreateProductInput{
		{CategoryID: "mugs", Name: "Espresso Mug", PriceCents: 1500, Stock: 10},
		{CategoryID: "mugs", Name: "Latte Mug", PriceCents: 1800, Stock: 5},
		{CategoryID: "beans", Name: "Coffee Beans", PriceCents: 2200, Stock: 3},
	}
	for _, input := range seed {
		if _, err := service.CreateProduct(context.Background(), input); err != nil {
			t.Fatalf("failed to create product %s: %v", input.Name, err)
		}
	}

	all, err := service.ListProducts(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 products, got %d", len(all))
	}

	mugs, err := service.ListProducts(context.Background(), "mugs")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(mugs) != 2 {
		t.Errorf("expected 2 products in category mugs, got %d", len(mugs))
	}
}
