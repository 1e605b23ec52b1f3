// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for order persistence.
var (
	// ErrOrderNotFound is returned when an order is not found.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyDecided is returned when a guarded status transition
	// finds the order no longer in its processing state.
	ErrOrderAlreadyDecided = errors.New("order already decided")
)

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// Create persists a new order together with its items.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves an order with all of its items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindByCustomerID retrieves a page of the customer's orders, newest first.
	// Returns the page slice and the total number of matching orders.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]*entity.Order, int64, error)

	// FindByFarmerUserID retrieves a page of orders containing at least one
	// product owned by the given farmer's user account, newest first.
	FindByFarmerUserID(ctx context.Context, farmerUserID uuid.UUID, offset, limit int) ([]*entity.Order, int64, error)

	// UpdateStatusIfProcessing atomically moves the order from the processing
	// state to the given terminal status. Returns ErrOrderAlreadyDecided when
	// the order has already left the processing state.
	UpdateStatusIfProcessing(ctx context.Context, id uuid.UUID, status entity.OrderStatus) error
}
