package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ListingModel is the persistence model for the Listing domain entity.
// USD prices are stored as nullable decimals; all marketplace money is USD.
type ListingModel struct {
	TenantAggregateModel
	SellerID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Title         string                    `gorm:"type:varchar(200);not null"`
	Description   string                    `gorm:"type:text"`
	PromptIDsJSON string                    `gorm:"column:prompt_ids;type:jsonb;default:'[]'"`
	PriceUSD      decimal.NullDecimal       `gorm:"column:price_usd;type:decimal(18,2)"`
	PriceCredits  *int64                    `gorm:"column:price_credits"`
	Status        marketplace.ListingStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	SalesCount    int64                     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "marketplace_listings"
}

// ToDomain converts the persistence model to a domain Listing entity.
func (m *ListingModel) ToDomain() (*marketplace.Listing, error) {
	promptIDs := make([]uuid.UUID, 0)
	if m.PromptIDsJSON != "" {
		if err := json.Unmarshal([]byte(m.PromptIDsJSON), &promptIDs); err != nil {
			return nil, err
		}
	}

	l := &marketplace.Listing{
		SellerID:     m.SellerID,
		Title:        m.Title,
		Description:  m.Description,
		PromptIDs:    promptIDs,
		PriceCredits: m.PriceCredits,
		Status:       m.Status,
		SalesCount:   m.SalesCount,
	}
	if m.PriceUSD.Valid {
		price := valueobject.NewMoneyUSD(m.PriceUSD.Decimal)
		l.PriceUSD = &price
	}
	m.PopulateTenantAggregateRoot(&l.TenantAggregateRoot)
	return l, nil
}

// FromDomain populates the persistence model from a domain Listing entity.
func (m *ListingModel) FromDomain(l *marketplace.Listing) error {
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	m.SellerID = l.SellerID
	m.Title = l.Title
	m.Description = l.Description
	m.PriceCredits = l.PriceCredits
	m.Status = l.Status
	m.SalesCount = l.SalesCount

	if l.PriceUSD != nil {
		m.PriceUSD = decimal.NullDecimal{Decimal: l.PriceUSD.Amount(), Valid: true}
	} else {
		m.PriceUSD = decimal.NullDecimal{}
	}

	promptIDs := l.PromptIDs
	if promptIDs == nil {
		promptIDs = make([]uuid.UUID, 0)
	}
	promptIDsJSON, err := json.Marshal(promptIDs)
	if err != nil {
		return err
	}
	m.PromptIDsJSON = string(promptIDsJSON)
	return nil
}

// ListingModelFromDomain creates a new persistence model from a domain Listing entity.
func ListingModelFromDomain(l *marketplace.Listing) (*ListingModel, error) {
	m := &ListingModel{}
	if err := m.FromDomain(l); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	TenantAggregateModel
	OrderNumber   string                    `gorm:"type:varchar(50);not null;index:idx_orders_tenant_number,unique"`
	BuyerID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SellerID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ListingID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ListingTitle  string                    `gorm:"type:varchar(200);not null"`
	PaymentMethod marketplace.PaymentMethod `gorm:"type:varchar(20);not null"`
	AmountUSD     decimal.NullDecimal       `gorm:"column:amount_usd;type:decimal(18,2)"`
	AmountCredits *int64                    `gorm:"column:amount_credits"`
	Status        marketplace.OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	CancelReason  string                    `gorm:"type:text"`
	PaidAt        *time.Time
	CompletedAt   *time.Time
	RefundedAt    *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "marketplace_orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *marketplace.Order {
	o := &marketplace.Order{
		OrderNumber:   m.OrderNumber,
		BuyerID:       m.BuyerID,
		SellerID:      m.SellerID,
		ListingID:     m.ListingID,
		ListingTitle:  m.ListingTitle,
		PaymentMethod: m.PaymentMethod,
		AmountCredits: m.AmountCredits,
		Status:        m.Status,
		CancelReason:  m.CancelReason,
		PaidAt:        m.PaidAt,
		CompletedAt:   m.CompletedAt,
		RefundedAt:    m.RefundedAt,
	}
	if m.AmountUSD.Valid {
		amount := valueobject.NewMoneyUSD(m.AmountUSD.Decimal)
		o.AmountUSD = &amount
	}
	m.PopulateTenantAggregateRoot(&o.TenantAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *marketplace.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.BuyerID = o.BuyerID
	m.SellerID = o.SellerID
	m.ListingID = o.ListingID
	m.ListingTitle = o.ListingTitle
	m.PaymentMethod = o.PaymentMethod
	m.AmountCredits = o.AmountCredits
	m.Status = o.Status
	m.CancelReason = o.CancelReason
	m.PaidAt = o.PaidAt
	m.CompletedAt = o.CompletedAt
	m.RefundedAt = o.RefundedAt

	if o.AmountUSD != nil {
		m.AmountUSD = decimal.NullDecimal{Decimal: o.AmountUSD.Amount(), Valid: true}
	} else {
		m.AmountUSD = decimal.NullDecimal{}
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *marketplace.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// DisputeModel is the persistence model for the Dispute domain entity.
type DisputeModel struct {
	TenantAggregateModel
	OrderID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	OpenerID       uuid.UUID                 `gorm:"type:uuid;not null"`
	Opener         marketplace.DisputeOpener `gorm:"type:varchar(20);not null"`
	Reason         string                    `gorm:"type:text;not null"`
	Status         marketplace.DisputeStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	AssigneeID     *uuid.UUID                `gorm:"type:uuid;index"`
	ResolutionNote string                    `gorm:"type:text"`
	RefundIssued   bool                      `gorm:"not null;default:false"`
	ResolvedAt     *time.Time
}

// TableName returns the table name for GORM
func (DisputeModel) TableName() string {
	return "marketplace_disputes"
}

// ToDomain converts the persistence model to a domain Dispute entity.
func (m *DisputeModel) ToDomain() *marketplace.Dispute {
	d := &marketplace.Dispute{
		OrderID:        m.OrderID,
		OpenerID:       m.OpenerID,
		Opener:         m.Opener,
		Reason:         m.Reason,
		Status:         m.Status,
		AssigneeID:     m.AssigneeID,
		ResolutionNote: m.ResolutionNote,
		RefundIssued:   m.RefundIssued,
		ResolvedAt:     m.ResolvedAt,
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain Dispute entity.
func (m *DisputeModel) FromDomain(d *marketplace.Dispute) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.OrderID = d.OrderID
	m.OpenerID = d.OpenerID
	m.Opener = d.Opener
	m.Reason = d.Reason
	m.Status = d.Status
	m.AssigneeID = d.AssigneeID
	m.ResolutionNote = d.ResolutionNote
	m.RefundIssued = d.RefundIssued
	m.ResolvedAt = d.ResolvedAt
}

// DisputeModelFromDomain creates a new persistence model from a domain Dispute entity.
func DisputeModelFromDomain(d *marketplace.Dispute) *DisputeModel {
	m := &DisputeModel{}
	m.FromDomain(d)
	return m
}
