package directory

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository defines persistence for tenants
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error
}

// ResidentRepository defines persistence for residents
type ResidentRepository interface {
	// FindByIDForTenant finds a resident by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Resident, error)

	// FindActiveForTenant lists all active residents of a tenant
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]Resident, error)

	// Save creates or updates a resident
	Save(ctx context.Context, resident *Resident) error
}
