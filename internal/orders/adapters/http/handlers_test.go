package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogmemory "github.com/mihindugunarathne/FED-backend/internal/catalog/adapters/memory"
	catalogapp "github.com/mihindugunarathne/FED-backend/internal/catalog/app"
	catalogdomain "github.com/mihindugunarathne/FED-backend/internal/catalog/domain"
	"github.com/mihindugunarathne/FED-backend/internal/identity"
	idemmemory "github.com/mihindugunarathne/FED-backend/internal/idempotency/memory"
	"github.com/mihindugunarathne/FED-backend/internal/kafka"
	orderhttp "github.com/mihindugunarathne/FED-backend/internal/orders/adapters/http"
	ordersmemory "github.com/mihindugunarathne/FED-backend/internal/orders/adapters/memory"
	"github.com/mihindugunarathne/FED-backend/internal/orders/app"
	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/metrics"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
	"go.opentelemetry.io/otel"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*identity.Principal, error) {
	switch token {
	case "user-token":
		return &identity.Principal{UserID: "user-1", Role: "user"}, nil
	case "other-token":
		return &identity.Principal{UserID: "user-2", Role: "user"}, nil
	case "admin-token":
		return &identity.Principal{UserID: "admin-1", Role: "admin"}, nil
	default:
		return nil, identity.ErrUnauthorized
	}
}

type stubGateway struct {
	sessions        map[string]*ports.SessionStatus
	nextID          int
	getSessionCalls int
}

func newStubGateway() *stubGateway {
	return &stubGateway{sessions: make(map[string]*ports.SessionStatus)}
}

func (g *stubGateway) CreateSession(_ context.Context, order domain.Order) (*ports.CheckoutSession, error) {
	g.nextID++
	id := fmt.Sprintf("cs_test_%d", g.nextID)
	g.sessions[id] = &ports.SessionStatus{
		SessionID: id,
		OrderID:   order.ID,
		Status:    "open",
	}
	return &ports.CheckoutSession{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *stubGateway) GetSession(_ context.Context, sessionID string) (*ports.SessionStatus, error) {
	g.getSessionCalls++
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	copy := *session
	return &copy, nil
}

func (g *stubGateway) markPaid(sessionID string) {
	g.sessions[sessionID].PaymentCompleted = true
	g.sessions[sessionID].Status = "complete"
}

// stubWebhookVerifier accepts payloads whose signature header is "valid" and
// decodes the event straight from the JSON payload.
type stubWebhookVerifier struct{}

func (stubWebhookVerifier) VerifyWebhook(payload []byte, signatureHeader string) (*ports.WebhookEvent, error) {
	if signatureHeader != "valid" {
		return nil, errors.New("signature mismatch")
	}
	var event ports.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

type fixture struct {
	mux     *http.ServeMux
	catalog *catalogmemory.Repository
	orders  *ordersmemory.Repository
	gateway *stubGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	catalogRepo := catalogmemory.NewRepository()
	products := []catalogdomain.Product{
		{ID: "prod-1", Name: "Espresso Mug", PriceCents: 1500, Stock: 10, StripePriceID: "price_mug"},
		{ID: "prod-2", Name: "Coffee Beans", PriceCents: 2200, Stock: 1, StripePriceID: "price_beans"},
	}
	for _, product := range products {
		if err := catalogRepo.Create(ctx, product); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalogService := catalogapp.NewService(catalogRepo, nil, logger)

	m, err := metrics.NewMetrics(otel.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	ordersRepo := ordersmemory.NewRepository(catalogRepo)
	gateway := newStubGateway()
	service := app.NewService(
		ordersRepo,
		catalogService,
		gateway,
		kafka.NewNoopEventBus(),
		idemmemory.NewStore(),
		logger,
		m,
	)

	mux := http.NewServeMux()
	orderhttp.NewHandler(service, stubWebhookVerifier{}, stubVerifier{}).Register(mux)

	return &fixture{
		mux:     mux,
		catalog: catalogRepo,
		orders:  ordersRepo,
		gateway: gateway,
	}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createOrder(t *testing.T, token, idemKey string) string {
	t.Helper()

	payload := map[string]any{
		"items": []map[string]any{
			{"product_id": "prod-1", "quantity": 2},
		},
		"shipping_address": map[string]any{
			"line_1":      "1 Infinite Loop",
			"city":        "Cupertino",
			"postal_code": "95014",
			"country":     "US",
			"phone":       "+1 408 996 1010",
		},
	}

	rec := f.do(t, http.MethodPost, "/v1/orders", token, payload, map[string]string{"Idempotency-Key": idemKey})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Order domain.Order `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response.Order.ID
}

func TestCreateOrderEndpoint(t *testing.T) {
	t.Run("creates order for authenticated user", func(t *testing.T) {
		f := newFixture(t)

		orderID := f.createOrder(t, "user-token", "key-1")

		order, err := f.orders.GetByID(context.Background(), orderID)
		if err != nil {
			t.Fatalf("expected order persisted: %v", err)
		}

		if order.UserID != "user-1" {
			t.Errorf("expected owner user-1, got %s", order.UserID)
		}

		if order.OrderStatus != domain.StatusPending {
			t.Errorf("expected status %s, got %s", domain.StatusPending, order.OrderStatus)
		}
	})

	t.Run("rejects unauthenticated request", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/orders", "", nil, nil)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("requires idempotency key", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/orders", "user-token", map[string]any{}, nil)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("replays stored response for duplicate idempotency key", func(t *testing.T) {
		f := newFixture(t)

		firstID := f.createOrder(t, "user-token", "key-1")
		secondID := f.createOrder(t, "user-token", "key-1")

		if firstID != secondID {
			t.Errorf("expected replayed response with same order ID, got %s and %s", firstID, secondID)
		}

		orders, err := f.orders.ListByUser(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(orders) != 1 {
			t.Errorf("expected exactly one order created, got %d", len(orders))
		}
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		f := newFixture(t)

		payload := map[string]any{
			"items": []map[string]any{
				{"product_id": "prod-missing", "quantity": 1},
			},
			"shipping_address": map[string]any{
				"line_1":      "1 Infinite Loop",
				"city":        "Cupertino",
				"postal_code": "95014",
				"phone":       "+1 408 996 1010",
			},
		}

		rec := f.do(t, http.MethodPost, "/v1/orders", "user-token", payload, map[string]string{"Idempotency-Key": "key-404"})

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects invalid payload", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/orders", "user-token", map[string]any{"items": []map[string]any{}}, map[string]string{"Idempotency-Key": "key-400"})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	t.Run("returns own order", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.createOrder(t, "user-token", "key-1")

		rec := f.do(t, http.MethodGet, "/v1/orders/"+orderID, "user-token", nil, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("forbids reading another user's order", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.createOrder(t, "user-token", "key-1")

		rec := f.do(t, http.MethodGet, "/v1/orders/"+orderID, "other-token", nil, nil)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin may read any order", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.createOrder(t, "user-token", "key-1")

		rec := f.do(t, http.MethodGet, "/v1/orders/"+orderID, "admin-token", nil, nil)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 404 for missing order", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/v1/orders/nonexistent", "user-token", nil, nil)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestListOrdersEndpoint(t *testing.T) {
	f := newFixture(t)
	f.createOrder(t, "user-token", "key-1")
	f.createOrder(t, "user-token", "key-2")
	f.createOrder(t, "other-token", "key-3")

	rec := f.do(t, http.MethodGet, "/v1/orders", "user-token", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(response.Orders))
	}
}

func TestCancelOrderEndpoint(t *testing.T) {
	t.Run("cancels pending order", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.createOrder(t, "user-token", "key-1")

		rec := f.do(t, http.MethodPost, "/v1/orders/"+orderID+"/cancel", "user-token", nil, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		order, err := f.orders.GetByID(context.Background(), orderID)
		if err != nil {
			t.Fatalf("failed to reload order: %v", err)
		}
		if order.OrderStatus != domain.StatusCancelled {
			t.Errorf("expected status %s, got %s", domain.StatusCancelled, order.OrderStatus)
		}
	})

	t.Run("forbids cancelling another user's order", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.createOrder(t, "user-token", "key-1")

		rec := f.do(t, http.MethodPost, "/v1/orders/"+orderID+"/cancel", "other-token", nil, nil)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
