// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// productRepository implements the domain.ProductRepository interface.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// FindByID retrieves a product by its unique ID with the owning farmer's user ID resolved.
func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel

	err := repo.db.WithContext(ctx).
		Preload("Farmer").
		First(&productM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toProductDomain(&productM), nil
}

// FindByIDs retrieves several products at once, keyed by ID.
func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*entity.Product{}, nil
	}

	var productModels []model.ProductModel

	err := repo.db.WithContext(ctx).
		Preload("Farmer").
		Where("id IN ?", ids).
		Find(&productModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	products := make(map[uuid.UUID]*entity.Product, len(productModels))
	for i := range productModels {
		products[productModels[i].ID] = toProductDomain(&productModels[i])
	}

	return products, nil
}

// --- Mapper Functions ---

// toProductDomain converts a GORM ProductModel to a domain Product entity.
func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	product := &entity.Product{
		ID:                   data.ID,
		FarmerID:             data.FarmerID,
		Name:                 data.Name,
		Description:          data.Description,
		Price:                data.Price,
		Unit:                 data.Unit,
		MinimumOrderQuantity: data.MinimumOrderQuantity,
		MaxAvailableQuantity: data.MaxAvailableQuantity,
		IsInStock:            data.IsInStock,
		ThumbnailURL:         data.ThumbnailURL,
		CreatedAt:            data.CreatedAt,
		UpdatedAt:            data.UpdatedAt,
	}

	if data.Farmer != nil {
		product.FarmerUserID = data.Farmer.UserID
	}

	return product
}
