// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleAdmin indicates a platform administrator.
	RoleAdmin Role = "ADMIN"
	// RoleCustomer indicates a regular buyer.
	RoleCustomer Role = "CUSTOMER"
	// RoleFarmer indicates a produce seller.
	RoleFarmer Role = "FARMER"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleFarmer:
		return true
	default:
		return false
	}
}
