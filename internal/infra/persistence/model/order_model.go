package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderModel mirrors the 'orders' table.
type OrderModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderStatus string    `gorm:"type:varchar(20);not null"`
	TotalPrice  float64   `gorm:"type:numeric(12,2);not null"`
	Notes       string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel mirrors the 'order_items' table. Price columns are snapshots
// taken at order creation time.
type OrderItemModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName  string    `gorm:"type:varchar(150);not null"`
	FarmerUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	UnitPrice    float64   `gorm:"type:numeric(12,2);not null"`
	Quantity     int       `gorm:"not null"`
	LineTotal    float64   `gorm:"type:numeric(12,2);not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}
