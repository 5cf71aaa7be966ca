package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

// ListUserOrdersQuery requests every order belonging to a user.
type ListUserOrdersQuery struct {
	UserID string
}

// Validate ensures the query has valid parameters.
func (q ListUserOrdersQuery) Validate() error {
	if strings.TrimSpace(q.UserID) == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// ListUserOrdersQueryHandler executes ListUserOrdersQuery.
type ListUserOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewListUserOrdersQueryHandler constructs a ListUserOrdersQueryHandler.
func NewListUserOrdersQueryHandler(repo ports.OrderRepository) *ListUserOrdersQueryHandler {
	return &ListUserOrdersQueryHandler{repo: repo}
}

// Handle executes the query.
func (h *ListUserOrdersQueryHandler) Handle(ctx context.Context, query ListUserOrdersQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repo.ListByUser(ctx, query.UserID)
}
