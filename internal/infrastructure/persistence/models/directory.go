package models

import (
	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/shared"
)

// TenantModel is the persistence model for the Tenant (building) aggregate
type TenantModel struct {
	AggregateModel
	Name            string `gorm:"type:varchar(200);not null"`
	BankAccountName string `gorm:"type:varchar(200)"`
	Active          bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *directory.Tenant {
	return &directory.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Name:            m.Name,
		BankAccountName: m.BankAccountName,
		Active:          m.Active,
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *directory.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.BankAccountName = t.BankAccountName
	m.Active = t.Active
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant
func TenantModelFromDomain(t *directory.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// ResidentModel is the persistence model for the Resident aggregate
type ResidentModel struct {
	TenantAggregateModel
	Name      string                 `gorm:"type:varchar(200);not null"`
	Email     string                 `gorm:"type:varchar(200);not null;index"`
	Unit      string                 `gorm:"type:varchar(50);not null"`
	Role      directory.ResidentRole `gorm:"type:varchar(20);not null;default:'RESIDENT'"`
	PushToken *string                `gorm:"type:varchar(500)"`
	Active    bool                   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ResidentModel) TableName() string {
	return "residents"
}

// ToDomain converts the persistence model to a domain Resident
func (m *ResidentModel) ToDomain() *directory.Resident {
	resident := &directory.Resident{
		Name:      m.Name,
		Email:     m.Email,
		Unit:      m.Unit,
		Role:      m.Role,
		PushToken: m.PushToken,
		Active:    m.Active,
	}
	m.PopulateTenantAggregateRoot(&resident.TenantAggregateRoot)
	return resident
}

// FromDomain populates the persistence model from a domain Resident
func (m *ResidentModel) FromDomain(r *directory.Resident) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Name = r.Name
	m.Email = r.Email
	m.Unit = r.Unit
	m.Role = r.Role
	m.PushToken = r.PushToken
	m.Active = r.Active
}

// ResidentModelFromDomain creates a new persistence model from a domain Resident
func ResidentModelFromDomain(r *directory.Resident) *ResidentModel {
	m := &ResidentModel{}
	m.FromDomain(r)
	return m
}
