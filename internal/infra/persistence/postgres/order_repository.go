// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements the domain.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order together with its items.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrEntityNotFound.WrapMessage("invalid customer or product reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	// Update the entity with generated values
	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = orderM.Items[i].ID
		order.Items[i].OrderID = orderM.ID
	}

	return nil
}

// FindByID retrieves an order with all of its items.
func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel

	err := repo.db.WithContext(ctx).
		Preload("Items").
		First(&orderM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toOrderDomain(&orderM), nil
}

// FindByCustomerID retrieves a page of the customer's orders, newest first.
func (repo *orderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]*entity.Order, int64, error) {
	var total int64

	err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	var orderModels []model.OrderModel

	err = repo.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return toOrderDomainSlice(orderModels), total, nil
}

// FindByFarmerUserID retrieves a page of orders containing at least one
// product owned by the given farmer's user account, newest first.
func (repo *orderRepository) FindByFarmerUserID(ctx context.Context, farmerUserID uuid.UUID, offset, limit int) ([]*entity.Order, int64, error) {
	base := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.farmer_user_id = ?", farmerUserID).
		Distinct("orders.id")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}

	var orderModels []model.OrderModel

	err := repo.db.WithContext(ctx).
		Preload("Items").
		Where("id IN (?)", repo.db.
			Model(&model.OrderItemModel{}).
			Select("order_id").
			Where("farmer_user_id = ?", farmerUserID)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return toOrderDomainSlice(orderModels), total, nil
}

// UpdateStatusIfProcessing atomically moves the order from the processing
// state to the given terminal status. The guarded WHERE clause makes the
// transition first-decision-wins under concurrent farmers.
func (repo *orderRepository) UpdateStatusIfProcessing(ctx context.Context, id uuid.UUID, status entity.OrderStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ? AND order_status = ?", id, entity.OrderStatusProcessing.String()).
		Update("order_status", status.String())
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the order vanished or it already left the processing state.
		var count int64
		if err := repo.db.WithContext(ctx).
			Model(&model.OrderModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return errors.WithStack(err)
		}
		if count == 0 {
			return repository.ErrOrderNotFound
		}

		return repository.ErrOrderAlreadyDecided
	}

	return nil
}

// --- Mapper Functions ---

func toOrderDomainSlice(orderModels []model.OrderModel) []*entity.Order {
	orders := make([]*entity.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, toOrderDomain(&orderModels[i]))
	}

	return orders
}

// toOrderDomain converts a GORM OrderModel to a domain Order entity.
func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	order := &entity.Order{
		ID:         data.ID,
		CustomerID: data.CustomerID,
		Status:     entity.OrderStatus(data.OrderStatus),
		TotalPrice: data.TotalPrice,
		Notes:      data.Notes,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}

	order.Items = make([]entity.OrderItem, 0, len(data.Items))
	for _, itemM := range data.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ID:           itemM.ID,
			OrderID:      itemM.OrderID,
			ProductID:    itemM.ProductID,
			ProductName:  itemM.ProductName,
			FarmerUserID: itemM.FarmerUserID,
			UnitPrice:    itemM.UnitPrice,
			Quantity:     itemM.Quantity,
			LineTotal:    itemM.LineTotal,
		})
	}

	return order
}

// fromOrderDomain converts a domain Order entity to a GORM OrderModel.
func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	orderM := &model.OrderModel{
		ID:          data.ID,
		CustomerID:  data.CustomerID,
		OrderStatus: data.Status.String(),
		TotalPrice:  data.TotalPrice,
		Notes:       data.Notes,
	}

	orderM.Items = make([]model.OrderItemModel, 0, len(data.Items))
	for _, item := range data.Items {
		orderM.Items = append(orderM.Items, model.OrderItemModel{
			ID:           item.ID,
			OrderID:      item.OrderID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			FarmerUserID: item.FarmerUserID,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			LineTotal:    item.LineTotal,
		})
	}

	return orderM
}
