package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time `gorm:"index"`

	Info          *UserInfoModel      `gorm:"foreignKey:UserID"`
	Farmer        *FarmerProfileModel `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshTokenModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// UserInfoModel mirrors the 'user_info' table. UserID references users.id (UUID).
type UserInfoModel struct {
	UserID      uuid.UUID `gorm:"primaryKey"`
	FirstName   string    `gorm:"type:varchar(100);not null"`
	LastName    string    `gorm:"type:varchar(100);not null"`
	PhoneNumber string    `gorm:"type:varchar(30);unique;not null"`
	BirthDate   *time.Time
	Gender      string `gorm:"type:varchar(20)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserInfoModel) TableName() string {
	return "user_info"
}

// FarmerProfileModel mirrors the 'farmer_profiles' table. UserID references users.id (UUID).
type FarmerProfileModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FarmName     string    `gorm:"type:varchar(150);not null"`
	FarmLocation string    `gorm:"type:varchar(255)"`
	Bio          string    `gorm:"type:text"`
	IsVerified   bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (FarmerProfileModel) TableName() string {
	return "farmer_profiles"
}
