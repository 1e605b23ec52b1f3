// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique account.
// It contains only the most fundamental identity information shared across all roles.
type User struct {
	ID           uuid.UUID      // The Global Unique Identifier (GUID) for the user.
	Email        string         // The user's primary contact email, used as the login identifier.
	PasswordHash string         // The bcrypt-hashed password.
	Role         Role           // The user's role (admin, customer or farmer).
	Info         *UserInfo      // A pointer to the personal profile. Always present after registration.
	Farmer       *FarmerProfile // A pointer to the farmer-specific profile. Nil unless the user is a farmer.
	CreatedAt    time.Time      // Timestamp of when this user account was created.
	UpdatedAt    time.Time      // Timestamp of the last modification to this user's data.
}

// FullName returns the user's display name built from their personal profile.
func (u *User) FullName() string {
	if u.Info == nil {
		return u.Email
	}

	return u.Info.FirstName + " " + u.Info.LastName
}

// UserInfo holds the personal details of an account.
type UserInfo struct {
	UserID      uuid.UUID  // Foreign Key that links this profile to a core User entity.
	FirstName   string     // The user's given name.
	LastName    string     // The user's family name.
	PhoneNumber string     // The user's phone number, unique across accounts.
	BirthDate   *time.Time // Optional date of birth.
	Gender      string     // Optional self-reported gender.
	UpdatedAt   time.Time  // Timestamp of the last modification to this profile.
}

// FarmerProfile holds data specific to the "farmer" role.
type FarmerProfile struct {
	ID           uuid.UUID // The unique ID of the farmer profile itself.
	UserID       uuid.UUID // Foreign Key that links this profile to a core User entity.
	FarmName     string    // The official name of the farm.
	FarmLocation string    // Where the farm is located.
	Bio          string    // A free-text description of the farm and its produce.
	IsVerified   bool      // Whether an admin has verified this farmer.
	UpdatedAt    time.Time // Timestamp of the last modification to this profile.
}
