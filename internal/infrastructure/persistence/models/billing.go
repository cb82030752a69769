package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for the LedgerEntry domain entity.
// The table is append-only; rows are never updated or deleted.
type LedgerEntryModel struct {
	BaseModel
	TenantID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_ledger_tenant_user,priority:1"`
	UserID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_ledger_tenant_user,priority:2"`
	Type         billing.EntryType `gorm:"type:varchar(30);not null;index"`
	Amount       int64             `gorm:"not null"`
	BalanceAfter int64             `gorm:"not null"`
	OrderID      *uuid.UUID        `gorm:"type:uuid;index"`
	PayoutID     *uuid.UUID        `gorm:"type:uuid;index"`
	Description  string            `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "credit_ledger"
}

// ToDomain converts the persistence model to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToDomain() *billing.LedgerEntry {
	return &billing.LedgerEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:     m.TenantID,
		UserID:       m.UserID,
		Type:         m.Type,
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		OrderID:      m.OrderID,
		PayoutID:     m.PayoutID,
		Description:  m.Description,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry entity.
func (m *LedgerEntryModel) FromDomain(e *billing.LedgerEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.UserID = e.UserID
	m.Type = e.Type
	m.Amount = e.Amount
	m.BalanceAfter = e.BalanceAfter
	m.OrderID = e.OrderID
	m.PayoutID = e.PayoutID
	m.Description = e.Description
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry entity.
func LedgerEntryModelFromDomain(e *billing.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// PayoutBatchModel is the persistence model for the PayoutBatch domain entity.
// Items live in their own table and are loaded by the repository.
type PayoutBatchModel struct {
	TenantAggregateModel
	SenderBatchID string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	PayPalBatchID string               `gorm:"column:paypal_batch_id;type:varchar(100);index"`
	Status        billing.PayoutStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	ItemCount     int                  `gorm:"not null;default:0"`
	TotalCredits  int64                `gorm:"not null;default:0"`
	TotalUSD      decimal.Decimal      `gorm:"column:total_usd;type:decimal(18,2);not null;default:0"`
	SubmittedAt   *time.Time
	CompletedAt   *time.Time
	FailureReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PayoutBatchModel) TableName() string {
	return "payout_batches"
}

// ToDomain converts the persistence model to a domain PayoutBatch entity.
// Note: Items must be loaded separately by the repository.
func (m *PayoutBatchModel) ToDomain() *billing.PayoutBatch {
	b := &billing.PayoutBatch{
		SenderBatchID: m.SenderBatchID,
		PayPalBatchID: m.PayPalBatchID,
		Status:        m.Status,
		ItemCount:     m.ItemCount,
		TotalCredits:  m.TotalCredits,
		TotalUSD:      valueobject.NewMoneyUSD(m.TotalUSD),
		SubmittedAt:   m.SubmittedAt,
		CompletedAt:   m.CompletedAt,
		FailureReason: m.FailureReason,
		Items:         make([]billing.PayoutItem, 0),
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain PayoutBatch entity.
func (m *PayoutBatchModel) FromDomain(b *billing.PayoutBatch) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.SenderBatchID = b.SenderBatchID
	m.PayPalBatchID = b.PayPalBatchID
	m.Status = b.Status
	m.ItemCount = b.ItemCount
	m.TotalCredits = b.TotalCredits
	m.TotalUSD = b.TotalUSD.Amount()
	m.SubmittedAt = b.SubmittedAt
	m.CompletedAt = b.CompletedAt
	m.FailureReason = b.FailureReason
}

// PayoutBatchModelFromDomain creates a new persistence model from a domain PayoutBatch entity.
func PayoutBatchModelFromDomain(b *billing.PayoutBatch) *PayoutBatchModel {
	m := &PayoutBatchModel{}
	m.FromDomain(b)
	return m
}

// PayoutItemModel is the persistence model for the PayoutItem domain entity.
type PayoutItemModel struct {
	BaseModel
	TenantID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	BatchID       uuid.UUID                `gorm:"type:uuid;not null;index:idx_payout_items_batch_seller,unique"`
	SellerID      uuid.UUID                `gorm:"type:uuid;not null;index:idx_payout_items_batch_seller,unique"`
	ReceiverEmail string                   `gorm:"type:varchar(200);not null"`
	Credits       int64                    `gorm:"not null"`
	AmountUSD     decimal.Decimal          `gorm:"column:amount_usd;type:decimal(18,2);not null"`
	Status        billing.PayoutItemStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PayPalItemID  string                   `gorm:"column:paypal_item_id;type:varchar(100)"`
	FailureReason string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PayoutItemModel) TableName() string {
	return "payout_items"
}

// ToDomain converts the persistence model to a domain PayoutItem entity.
func (m *PayoutItemModel) ToDomain() billing.PayoutItem {
	return billing.PayoutItem{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:      m.TenantID,
		BatchID:       m.BatchID,
		SellerID:      m.SellerID,
		ReceiverEmail: m.ReceiverEmail,
		Credits:       m.Credits,
		AmountUSD:     valueobject.NewMoneyUSD(m.AmountUSD),
		Status:        m.Status,
		PayPalItemID:  m.PayPalItemID,
		FailureReason: m.FailureReason,
	}
}

// FromDomain populates the persistence model from a domain PayoutItem entity.
func (m *PayoutItemModel) FromDomain(i billing.PayoutItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.TenantID = i.TenantID
	m.BatchID = i.BatchID
	m.SellerID = i.SellerID
	m.ReceiverEmail = i.ReceiverEmail
	m.Credits = i.Credits
	m.AmountUSD = i.AmountUSD.Amount()
	m.Status = i.Status
	m.PayPalItemID = i.PayPalItemID
	m.FailureReason = i.FailureReason
}

// PayoutItemModelFromDomain creates a new persistence model from a domain PayoutItem entity.
func PayoutItemModelFromDomain(i billing.PayoutItem) *PayoutItemModel {
	m := &PayoutItemModel{}
	m.FromDomain(i)
	return m
}
