// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateOrderItemInput is one requested order line.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput defines the data required to place a new order.
type CreateOrderInput struct {
	CustomerID uuid.UUID
	Notes      string
	Items      []CreateOrderItemInput
}

// --- Output DTOs ---

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders     []*entity.Order
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}

// OrderUsecase defines the interface for order business operations.
type OrderUsecase interface {
	// CreateOrder validates the requested lines against the product catalog,
	// snapshots prices and creates the order in the processing state.
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error)

	// GetOrder retrieves an order. Only the ordering customer, a farmer with
	// produce in the order, or an admin may view it.
	GetOrder(ctx context.Context, viewer *entity.Identity, orderID uuid.UUID) (*entity.Order, error)

	// UpdateOrderStatus moves a processing order to a terminal state. Only a
	// farmer owning at least one product in the order may decide; the first
	// decision wins and later ones are rejected.
	UpdateOrderStatus(ctx context.Context, farmerUserID, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error)

	// ListCustomerOrders retrieves a page of the customer's own orders, newest first.
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, page, size int) (*OrderPage, error)

	// ListFarmerOrders retrieves a page of orders containing the farmer's produce, newest first.
	ListFarmerOrders(ctx context.Context, farmerUserID uuid.UUID, page, size int) (*OrderPage, error)
}
