package enums

import "fmt"

// CompanyStatus tracks the lifecycle of a business account.
type CompanyStatus string

const (
	CompanyStatusPending   CompanyStatus = "pending"
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusSuspended CompanyStatus = "suspended"
	CompanyStatusInactive  CompanyStatus = "inactive"
)

var validCompanyStatuses = []CompanyStatus{
	CompanyStatusPending,
	CompanyStatusActive,
	CompanyStatusSuspended,
	CompanyStatusInactive,
}

// String implements fmt.Stringer.
func (c CompanyStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CompanyStatus.
func (c CompanyStatus) IsValid() bool {
	for _, candidate := range validCompanyStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCompanyStatus converts raw input into a CompanyStatus.
func ParseCompanyStatus(value string) (CompanyStatus, error) {
	for _, candidate := range validCompanyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid company status %q", value)
}
