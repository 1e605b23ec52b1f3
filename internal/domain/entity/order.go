// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusProcessing is the initial state, waiting for a farmer decision.
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// OrderStatusConfirmed is the terminal accepted state.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusRejected is the terminal rejected state.
	OrderStatusRejected OrderStatus = "REJECTED"
)

// String returns the string representation of the OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusRejected
}

// IsValid checks if the OrderStatus is a valid value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusConfirmed, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// Order represents a customer's purchase request covering one or more products.
type Order struct {
	ID         uuid.UUID   // The unique ID of the order.
	CustomerID uuid.UUID   // The user who placed the order.
	Status     OrderStatus // Current lifecycle state.
	TotalPrice float64     // Sum of all line totals, computed at creation time.
	Notes      string      // Optional free-text instructions from the customer.
	Items      []OrderItem // The order lines.
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContainsProductOfFarmer reports whether any order line references a product
// owned by the given farmer user account.
func (o *Order) ContainsProductOfFarmer(farmerUserID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.FarmerUserID == farmerUserID {
			return true
		}
	}

	return false
}

// OrderItem is one line of an order. Price fields are snapshots taken at
// creation time so later product price changes never affect past orders.
type OrderItem struct {
	ID           uuid.UUID // The unique ID of the order line.
	OrderID      uuid.UUID // The order this line belongs to.
	ProductID    uuid.UUID // The ordered product.
	ProductName  string    // Snapshot of the product name at order time.
	FarmerUserID uuid.UUID // Snapshot of the owning farmer's user ID, used for authorization.
	UnitPrice    float64   // Snapshot of the product's unit price.
	Quantity     int       // Ordered quantity.
	LineTotal    float64   // UnitPrice * Quantity.
}
