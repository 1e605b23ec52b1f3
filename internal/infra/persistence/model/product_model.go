package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel mirrors the 'products' table.
type ProductModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	FarmerID             uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                 string    `gorm:"type:varchar(150);not null"`
	Description          string    `gorm:"type:text"`
	Price                float64   `gorm:"type:numeric(12,2);not null"`
	Unit                 string    `gorm:"type:varchar(30)"`
	MinimumOrderQuantity int       `gorm:"not null;default:1"`
	MaxAvailableQuantity *int
	IsInStock            bool   `gorm:"not null;default:true"`
	ThumbnailURL         string `gorm:"type:varchar(512)"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Farmer *FarmerProfileModel `gorm:"foreignKey:FarmerID"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
