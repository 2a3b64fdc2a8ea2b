package directory

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitefund/backend/internal/domain/shared"
)

// ResidentRole distinguishes administrators from ordinary residents
type ResidentRole string

const (
	ResidentRoleAdmin    ResidentRole = "ADMIN"
	ResidentRoleResident ResidentRole = "RESIDENT"
)

// IsValid checks if the role is valid
func (r ResidentRole) IsValid() bool {
	return r == ResidentRoleAdmin || r == ResidentRoleResident
}

// Resident represents a person living in a building who can be assigned dues
type Resident struct {
	shared.TenantAggregateRoot
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Unit      string       `json:"unit,omitempty"` // apartment/flat number
	Role      ResidentRole `json:"role"`
	PushToken *string      `json:"-"` // device token for push notifications
	Active    bool         `json:"active"`
}

// NewResident creates a new resident
func NewResident(tenantID uuid.UUID, name, email, unit string, role ResidentRole) (*Resident, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Resident name cannot be empty")
	}
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Resident email cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Resident role is not valid")
	}
	return &Resident{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Email:               email,
		Unit:                unit,
		Role:                role,
		Active:              true,
	}, nil
}

// IsAdmin returns true if the resident manages the building
func (r *Resident) IsAdmin() bool {
	return r.Role == ResidentRoleAdmin
}

// SetPushToken updates the resident's device token
func (r *Resident) SetPushToken(token string) {
	if token == "" {
		r.PushToken = nil
	} else {
		r.PushToken = &token
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
