package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitefund/backend/internal/domain/finance"
)

// LedgerEntryModel is the persistence model for ledger entries. The table
// is append-only: rows are only ever inserted.
type LedgerEntryModel struct {
	TenantAggregateModel
	Amount      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Description string              `gorm:"type:varchar(500);not null"`
	EntryDate   time.Time           `gorm:"not null;index"`
	Source      finance.EntrySource `gorm:"type:varchar(20);not null;index"`
	SourceID    *uuid.UUID          `gorm:"type:uuid;index"`
	ResidentID  *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *finance.LedgerEntry {
	entry := &finance.LedgerEntry{
		Amount:      m.Amount,
		Description: m.Description,
		EntryDate:   m.EntryDate,
		Source:      m.Source,
		SourceID:    m.SourceID,
		ResidentID:  m.ResidentID,
	}
	m.PopulateTenantAggregateRoot(&entry.TenantAggregateRoot)
	return entry
}

// FromDomain populates the persistence model from a domain LedgerEntry
func (m *LedgerEntryModel) FromDomain(e *finance.LedgerEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Amount = e.Amount
	m.Description = e.Description
	m.EntryDate = e.EntryDate
	m.Source = e.Source
	m.SourceID = e.SourceID
	m.ResidentID = e.ResidentID
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *finance.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// DueModel is the persistence model for the Due aggregate root. The unique
// index over (resident_id, description, period) makes duplicate generation
// impossible even under concurrent writers; residents belong to exactly one
// tenant, so the index is tenant-safe without including tenant_id.
type DueModel struct {
	TenantAggregateModel
	ResidentID        uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:uq_dues_resident_desc_period,priority:1"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Description       string                `gorm:"type:varchar(300);not null;uniqueIndex:uq_dues_resident_desc_period,priority:2"`
	DueDate           time.Time             `gorm:"not null;index"`
	Period            string                `gorm:"type:varchar(7);not null;uniqueIndex:uq_dues_resident_desc_period,priority:3"`
	Status            finance.DueStatus     `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	ReceiptObjectKey  *string               `gorm:"type:varchar(500)"`
	ReceiptUploadedAt *time.Time            `gorm:"index"`
	PaymentDate       *time.Time
	ApprovalKind      *finance.ApprovalKind `gorm:"type:varchar(10)"`
	ApprovedBy        *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DueModel) TableName() string {
	return "dues"
}

// ToDomain converts the persistence model to a domain Due
func (m *DueModel) ToDomain() *finance.Due {
	due := &finance.Due{
		ResidentID:        m.ResidentID,
		Amount:            m.Amount,
		Description:       m.Description,
		DueDate:           m.DueDate,
		Period:            m.Period,
		Status:            m.Status,
		ReceiptObjectKey:  m.ReceiptObjectKey,
		ReceiptUploadedAt: m.ReceiptUploadedAt,
		PaymentDate:       m.PaymentDate,
		ApprovalKind:      m.ApprovalKind,
		ApprovedBy:        m.ApprovedBy,
	}
	m.PopulateTenantAggregateRoot(&due.TenantAggregateRoot)
	return due
}

// FromDomain populates the persistence model from a domain Due
func (m *DueModel) FromDomain(d *finance.Due) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.ResidentID = d.ResidentID
	m.Amount = d.Amount
	m.Description = d.Description
	m.DueDate = d.DueDate
	m.Period = d.Period
	m.Status = d.Status
	m.ReceiptObjectKey = d.ReceiptObjectKey
	m.ReceiptUploadedAt = d.ReceiptUploadedAt
	m.PaymentDate = d.PaymentDate
	m.ApprovalKind = d.ApprovalKind
	m.ApprovedBy = d.ApprovedBy
}

// DueModelFromDomain creates a new persistence model from a domain Due
func DueModelFromDomain(d *finance.Due) *DueModel {
	m := &DueModel{}
	m.FromDomain(d)
	return m
}

// ExpenseModel is the persistence model for the Expense aggregate root
type ExpenseModel struct {
	TenantAggregateModel
	Description      string          `gorm:"type:varchar(300);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ExpenseDate      time.Time       `gorm:"not null;index"`
	InvoiceObjectKey *string         `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	expense := &finance.Expense{
		Description:      m.Description,
		Amount:           m.Amount,
		ExpenseDate:      m.ExpenseDate,
		InvoiceObjectKey: m.InvoiceObjectKey,
	}
	m.PopulateTenantAggregateRoot(&expense.TenantAggregateRoot)
	return expense
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Description = e.Description
	m.Amount = e.Amount
	m.ExpenseDate = e.ExpenseDate
	m.InvoiceObjectKey = e.InvoiceObjectKey
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// RecurringRuleModel is the persistence model for recurring due rules
type RecurringRuleModel struct {
	TenantAggregateModel
	Description string          `gorm:"type:varchar(300);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DayOfMonth  int             `gorm:"not null;index"`
	Active      bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (RecurringRuleModel) TableName() string {
	return "recurring_rules"
}

// ToDomain converts the persistence model to a domain RecurringRule
func (m *RecurringRuleModel) ToDomain() *finance.RecurringRule {
	rule := &finance.RecurringRule{
		Description: m.Description,
		Amount:      m.Amount,
		DayOfMonth:  m.DayOfMonth,
		Active:      m.Active,
	}
	m.PopulateTenantAggregateRoot(&rule.TenantAggregateRoot)
	return rule
}

// FromDomain populates the persistence model from a domain RecurringRule
func (m *RecurringRuleModel) FromDomain(r *finance.RecurringRule) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Description = r.Description
	m.Amount = r.Amount
	m.DayOfMonth = r.DayOfMonth
	m.Active = r.Active
}

// RecurringRuleModelFromDomain creates a new persistence model from a domain RecurringRule
func RecurringRuleModelFromDomain(r *finance.RecurringRule) *RecurringRuleModel {
	m := &RecurringRuleModel{}
	m.FromDomain(r)
	return m
}
