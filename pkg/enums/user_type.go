package enums

import "fmt"

// UserType is the role the pharmacy API assigns to an account.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeAdmin    UserType = "admin"
	UserTypeEmployee UserType = "employee"
)

var validUserTypes = []UserType{
	UserTypeCustomer,
	UserTypeAdmin,
	UserTypeEmployee,
}

// IsValid reports whether the value matches a known user type.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user works in the back-office.
func (u UserType) IsStaff() bool {
	return u == UserTypeAdmin || u == UserTypeEmployee
}

// ParseUserType converts the raw string to UserType.
func ParseUserType(value string) (UserType, error) {
	for _, candidate := range validUserTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
