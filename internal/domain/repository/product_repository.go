// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines read operations against the product catalog.
// Orders and conversations reference products; catalog management itself is
// owned by a separate surface.
type ProductRepository interface {
	// FindByID retrieves a product by its unique ID with the owning farmer's
	// user ID resolved.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs retrieves several products at once, keyed by ID. Missing IDs
	// are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error)
}
