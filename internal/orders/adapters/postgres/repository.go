package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists the order, its address, and its line-item snapshots in a
// single transaction.
func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, order_status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		order.ID,
		order.UserID,
		order.OrderStatus,
		order.PaymentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	a := order.Address
	_, err = tx.Exec(ctx, `
		INSERT INTO order_addresses (id, order_id, line_1, line_2, city, state, postal_code, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		a.ID, order.ID, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.Phone,
	)
	if err != nil {
		return fmt.Errorf("insert order address: %w", err)
	}

	for pos, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, name, price_cents, stripe_price_id, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			order.ID, pos, item.ProductID, item.Name, item.PriceCents, item.StripePriceID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.order_status, o.payment_status,
		       COALESCE(o.checkout_session_id, ''), o.created_at, o.updated_at,
		       a.id, a.line_1, a.line_2, a.city, a.state, a.postal_code, a.country, a.phone
		FROM orders o
		JOIN order_addresses a ON a.order_id = o.id
		WHERE o.id = $1
	`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.OrderStatus,
		&order.PaymentStatus,
		&order.CheckoutSessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Address.ID,
		&order.Address.Line1,
		&order.Address.Line2,
		&order.Address.City,
		&order.Address.State,
		&order.Address.PostalCode,
		&order.Address.Country,
		&order.Address.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.order_status, o.payment_status,
		       COALESCE(o.checkout_session_id, ''), o.created_at, o.updated_at,
		       a.id, a.line_1, a.line_2, a.city, a.state, a.postal_code, a.country, a.phone
		FROM orders o
		JOIN order_addresses a ON a.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.OrderStatus,
			&order.PaymentStatus,
			&order.CheckoutSessionID,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Address.ID,
			&order.Address.Line1,
			&order.Address.Line2,
			&order.Address.City,
			&order.Address.State,
			&order.Address.PostalCode,
			&order.Address.Country,
			&order.Address.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.LineItem, error) {
	query := `
		SELECT order_id, product_id, name, price_cents, stripe_price_id, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.LineItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		var item domain.LineItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.PriceCents, &item.StripePriceID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET order_status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	query := `
		UPDATE orders
		SET checkout_session_id = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, sessionID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set checkout session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

// Fulfill decrements stock for every line item and flips the order to
// CONFIRMED/PAID inside one transaction. The order row is locked first so
// duplicate deliveries serialize; the loser of the race observes PAID and
// commits nothing. A conditional decrement guards stock from ever going
// negative: zero rows affected means insufficient stock and aborts the whole
// transaction.
func (r *Repository) Fulfill(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderStatus domain.OrderStatus
	var paymentStatus domain.PaymentStatus
	err = tx.QueryRow(ctx, `
		SELECT order_status, payment_status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&orderStatus, &paymentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ErrNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}

	if paymentStatus == domain.PaymentPaid {
		return nil
	}
	if orderStatus != domain.StatusPending || paymentStatus != domain.PaymentPending {
		return nil
	}

	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}

	type decrement struct {
		productID string
		quantity  int
	}
	var decrements []decrement
	for rows.Next() {
		var d decrement
		if err := rows.Scan(&d.productID, &d.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item: %w", err)
		}
		decrements = append(decrements, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	now := time.Now().UTC()
	for _, d := range decrements {
		result, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = $2
			WHERE id = $3 AND stock >= $1
		`, d.quantity, now, d.productID)
		if err != nil {
			return fmt.Errorf("decrement stock for product %s: %w", d.productID, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("product %s: %w", d.productID, domain.ErrInsufficientStock)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET order_status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4
	`, domain.StatusConfirmed, domain.PaymentPaid, now, id)
	if err != nil {
		return fmt.Errorf("confirm order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fulfillment: %w", err)
	}

	return nil
}
