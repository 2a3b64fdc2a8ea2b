package directory

import (
	"time"

	"github.com/sitefund/backend/internal/domain/shared"
)

// Tenant represents a managed building whose residents share a common fund
type Tenant struct {
	shared.BaseAggregateRoot
	Name            string `json:"name"`
	BankAccountName string `json:"bank_account_name,omitempty"` // account holder on the building's bank account
	Active          bool   `json:"active"`
}

// NewTenant creates a new tenant
func NewTenant(name, bankAccountName string) (*Tenant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		BankAccountName:   bankAccountName,
		Active:            true,
	}, nil
}

// ExpectedRecipientName returns the name receipts should be made out to:
// the bank account holder if configured, otherwise the building name.
func (t *Tenant) ExpectedRecipientName() string {
	if t.BankAccountName != "" {
		return t.BankAccountName
	}
	return t.Name
}

// Deactivate marks the tenant inactive
func (t *Tenant) Deactivate() {
	t.Active = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
