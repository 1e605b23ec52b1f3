// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"

	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID, including profile data.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).
		Preload("Info").
		Preload("Farmer").
		First(&userM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel

	err := repo.db.WithContext(ctx).
		Preload("Info").
		Preload("Farmer").
		First(&userM, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toUserDomain(&userM), nil
}

// ExistsByEmail reports whether an account with the email is already registered.
func (repo *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}

	return count > 0, nil
}

// ExistsByPhoneNumber reports whether an account with the phone number is already registered.
func (repo *userRepository) ExistsByPhoneNumber(ctx context.Context, phoneNumber string) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.UserInfoModel{}).
		Where("phone_number = ?", phoneNumber).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}

	return count > 0, nil
}

// Create persists a new user entity, including its personal info and optional
// farmer profile, to the storage. Association rows are created in the same
// statement batch via GORM's full-save semantics.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return mapUserUniqueViolation(err)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the entity with generated values
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	if user.Info != nil {
		user.Info.UserID = userM.ID
	}
	if user.Farmer != nil && userM.Farmer != nil {
		user.Farmer.ID = userM.Farmer.ID
		user.Farmer.UserID = userM.ID
	}

	return nil
}

// Update modifies an existing user entity in the storage.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return mapUserUniqueViolation(err)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	return nil
}

// mapUserUniqueViolation maps a unique constraint violation on the users or
// user_info tables to the matching domain error.
func mapUserUniqueViolation(err error) error {
	if strings.Contains(constraintName(err), "phone") {
		return domainerrors.ErrPhoneAlreadyExists.WrapMessage("phone number already registered")
	}

	return domainerrors.ErrEmailAlreadyExists.WrapMessage("email already registered")
}

// --- Mapper Functions ---

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         entity.Role(data.Role),
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}

	if data.Info != nil {
		user.Info = &entity.UserInfo{
			UserID:      data.Info.UserID,
			FirstName:   data.Info.FirstName,
			LastName:    data.Info.LastName,
			PhoneNumber: data.Info.PhoneNumber,
			BirthDate:   data.Info.BirthDate,
			Gender:      data.Info.Gender,
			UpdatedAt:   data.Info.UpdatedAt,
		}
	}

	if data.Farmer != nil {
		user.Farmer = &entity.FarmerProfile{
			ID:           data.Farmer.ID,
			UserID:       data.Farmer.UserID,
			FarmName:     data.Farmer.FarmName,
			FarmLocation: data.Farmer.FarmLocation,
			Bio:          data.Farmer.Bio,
			IsVerified:   data.Farmer.IsVerified,
			UpdatedAt:    data.Farmer.UpdatedAt,
		}
	}

	return user
}

// fromUserDomain converts a domain User entity to a GORM UserModel.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	userM := &model.UserModel{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         data.Role.String(),
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}

	if data.Info != nil {
		userM.Info = &model.UserInfoModel{
			UserID:      data.Info.UserID,
			FirstName:   data.Info.FirstName,
			LastName:    data.Info.LastName,
			PhoneNumber: data.Info.PhoneNumber,
			BirthDate:   data.Info.BirthDate,
			Gender:      data.Info.Gender,
		}
	}

	if data.Farmer != nil {
		userM.Farmer = &model.FarmerProfileModel{
			ID:           data.Farmer.ID,
			UserID:       data.Farmer.UserID,
			FarmName:     data.Farmer.FarmName,
			FarmLocation: data.Farmer.FarmLocation,
			Bio:          data.Farmer.Bio,
			IsVerified:   data.Farmer.IsVerified,
		}
	}

	return userM
}
