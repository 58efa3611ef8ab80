package trade

import (
	"strings"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists all statuses in workflow order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is a snapshot of a product at the moment the order was placed.
// It does not follow later product edits.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price * quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer order. Total is stored as submitted and never re-derived from items.
type Order struct {
	shared.BaseEntity
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   *string
	DeliveryAddress string
	Notes           string
	Items           []OrderItem
	Total           decimal.Decimal
	Status          OrderStatus
}

// OrderPatch carries writable order fields; nil fields are left untouched.
// An empty CustomerEmail clears the stored email.
type OrderPatch struct {
	CustomerName    *string
	CustomerPhone   *string
	CustomerEmail   *string
	DeliveryAddress *string
	Notes           *string
	Items           []OrderItem
	Total           *decimal.Decimal
	Status          *OrderStatus
}

// IsEmpty reports whether the patch changes nothing
func (p OrderPatch) IsEmpty() bool {
	return p.CustomerName == nil && p.CustomerPhone == nil && p.CustomerEmail == nil &&
		p.DeliveryAddress == nil && p.Notes == nil && p.Items == nil && p.Total == nil && p.Status == nil
}

// Validate checks every field present in the patch
func (p OrderPatch) Validate() error {
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	if p.CustomerPhone != nil && strings.TrimSpace(*p.CustomerPhone) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer phone cannot be empty")
	}
	if p.DeliveryAddress != nil && strings.TrimSpace(*p.DeliveryAddress) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Delivery address cannot be empty")
	}
	if p.Total != nil && p.Total.IsNegative() {
		return shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return ErrInvalidStatus(*p.Status)
	}
	for _, item := range p.Items {
		if item.Quantity < 1 {
			return shared.NewDomainError("INVALID_ITEM", "Item quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			return shared.NewDomainError("INVALID_ITEM", "Item price cannot be negative")
		}
	}
	return nil
}

// ErrInvalidStatus reports an unknown order status
func ErrInvalidStatus(status OrderStatus) error {
	return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+string(status))
}

// NewOrder creates an order from a patch. Customer name, phone and delivery address are required;
// other fields default to empty notes, no items, zero total and pending status.
func NewOrder(patch OrderPatch) (*Order, error) {
	if patch.CustomerName == nil || patch.CustomerPhone == nil || patch.DeliveryAddress == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name, phone and delivery address are required")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	order := &Order{
		BaseEntity: shared.NewBaseEntity(),
		Items:      []OrderItem{},
		Total:      decimal.Zero,
		Status:     OrderStatusPending,
	}
	order.apply(patch)
	return order, nil
}

// Apply validates and merges a patch into the order
func (o *Order) Apply(patch OrderPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	o.apply(patch)
	o.Touch()
	return nil
}

// SetStatus moves the order to any valid status. There is no transition graph:
// staff may correct a status in either direction.
func (o *Order) SetStatus(status OrderStatus) error {
	return o.Apply(OrderPatch{Status: &status})
}

// ItemsTotal sums the item subtotals. It is informational only; Total is authoritative.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// Normalize makes sure Items is never nil and status has a value
func (o *Order) Normalize() {
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
}

func (o *Order) apply(patch OrderPatch) {
	if patch.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.CustomerPhone != nil {
		o.CustomerPhone = strings.TrimSpace(*patch.CustomerPhone)
	}
	if patch.CustomerEmail != nil {
		o.CustomerEmail = normalizeEmail(*patch.CustomerEmail)
	}
	if patch.DeliveryAddress != nil {
		o.DeliveryAddress = *patch.DeliveryAddress
	}
	if patch.Notes != nil {
		o.Notes = *patch.Notes
	}
	if patch.Items != nil {
		o.Items = append([]OrderItem{}, patch.Items...)
	}
	if patch.Total != nil {
		o.Total = *patch.Total
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
}

func normalizeEmail(email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return &email
}
