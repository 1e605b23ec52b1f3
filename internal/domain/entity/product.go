// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product represents produce listed by a farmer.
type Product struct {
	ID                   uuid.UUID // The unique ID of the product.
	FarmerID             uuid.UUID // The farmer profile that owns this product.
	FarmerUserID         uuid.UUID // The user account behind the owning farmer profile (resolved via join).
	Name                 string    // Display name of the product.
	Description          string    // Free-text description.
	Price                float64   // Current unit price.
	Unit                 string    // Selling unit, e.g. "kg" or "piece".
	MinimumOrderQuantity int       // Smallest quantity a customer may order.
	MaxAvailableQuantity *int      // Optional cap on a single order's quantity. Nil means uncapped.
	IsInStock            bool      // Whether the product can currently be ordered.
	ThumbnailURL         string    // Optional product image.
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
