package models

import (
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
// Items are denormalized snapshots and live in a JSON column.
type OrderModel struct {
	BaseModel
	CustomerName    string            `gorm:"type:varchar(200);not null"`
	CustomerPhone   string            `gorm:"type:varchar(50);not null"`
	CustomerEmail   *string           `gorm:"type:varchar(200)"`
	DeliveryAddress string            `gorm:"type:text;not null"`
	Notes           string            `gorm:"type:text;not null;default:''"`
	Items           []trade.OrderItem `gorm:"type:jsonb;serializer:json"`
	Total           decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0"`
	Status          trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseEntity:      m.BaseModel.ToDomain(),
		CustomerName:    m.CustomerName,
		CustomerPhone:   m.CustomerPhone,
		CustomerEmail:   m.CustomerEmail,
		DeliveryAddress: m.DeliveryAddress,
		Notes:           m.Notes,
		Items:           m.Items,
		Total:           m.Total,
		Status:          m.Status,
	}
	o.Normalize()
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.CustomerName = o.CustomerName
	m.CustomerPhone = o.CustomerPhone
	m.CustomerEmail = o.CustomerEmail
	m.DeliveryAddress = o.DeliveryAddress
	m.Notes = o.Notes
	m.Items = o.Items
	if m.Items == nil {
		m.Items = []trade.OrderItem{}
	}
	m.Total = o.Total
	m.Status = o.Status
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderPatchColumns maps the fields present in patch to column values taken
// from the already patched order o.
func OrderPatchColumns(o *trade.Order, patch trade.OrderPatch) map[string]any {
	cols := map[string]any{"updated_at": o.UpdatedAt}
	if patch.CustomerName != nil {
		cols["customer_name"] = o.CustomerName
	}
	if patch.CustomerPhone != nil {
		cols["customer_phone"] = o.CustomerPhone
	}
	if patch.CustomerEmail != nil {
		cols["customer_email"] = o.CustomerEmail
	}
	if patch.DeliveryAddress != nil {
		cols["delivery_address"] = o.DeliveryAddress
	}
	if patch.Notes != nil {
		cols["notes"] = o.Notes
	}
	if patch.Items != nil {
		cols["items"] = jsonColumn(o.Items)
	}
	if patch.Total != nil {
		cols["total"] = o.Total
	}
	if patch.Status != nil {
		cols["status"] = o.Status
	}
	return cols
}
