package trade

import (
	"time"

	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is an order line in admin requests
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Title     string          `json:"title" binding:"required,max=200"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderRequest represents a partial order update
type UpdateOrderRequest struct {
	CustomerName    *string            `json:"customer_name" binding:"omitempty,min=1,max=200"`
	CustomerPhone   *string            `json:"customer_phone" binding:"omitempty,min=1,max=50"`
	CustomerEmail   *string            `json:"customer_email" binding:"omitempty,max=200"`
	DeliveryAddress *string            `json:"delivery_address" binding:"omitempty,min=1,max=500"`
	Notes           *string            `json:"notes" binding:"omitempty,max=2000"`
	Items           []OrderItemRequest `json:"items" binding:"omitempty,dive"`
	Total           *decimal.Decimal   `json:"total"`
	Status          *string            `json:"status" binding:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
}

// ToPatch converts the request into a domain patch
func (r UpdateOrderRequest) ToPatch() trade.OrderPatch {
	patch := trade.OrderPatch{
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		DeliveryAddress: r.DeliveryAddress,
		Notes:           r.Notes,
		Total:           r.Total,
	}
	if r.Items != nil {
		patch.Items = make([]trade.OrderItem, len(r.Items))
		for i, item := range r.Items {
			patch.Items[i] = trade.OrderItem(item)
		}
	}
	if r.Status != nil {
		status := trade.OrderStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}

// UpdateStatusRequest sets an order status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// OrderListFilter narrows the admin order list
type OrderListFilter struct {
	Search  string `form:"search" binding:"max=100"`
	Status  string `form:"status" binding:"omitempty,oneof=all pending confirmed shipped delivered cancelled"`
	OrderBy string `form:"order_by"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// OrderItemResponse is an order line in responses
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   *string             `json:"customer_email"`
	DeliveryAddress string              `json:"delivery_address"`
	Notes           string              `json:"notes"`
	Items           []OrderItemResponse `json:"items"`
	Total           decimal.Decimal     `json:"total"`
	Status          string              `json:"status"`
	ItemsCount      int                 `json:"items_count"`
	CreatedDate     time.Time           `json:"created_date"`
	UpdatedDate     time.Time           `json:"updated_date"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	count := 0
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
		count += item.Quantity
	}
	return OrderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		DeliveryAddress: o.DeliveryAddress,
		Notes:           o.Notes,
		Items:           items,
		Total:           o.Total,
		Status:          string(o.Status),
		ItemsCount:      count,
		CreatedDate:     o.CreatedAt,
		UpdatedDate:     o.UpdatedAt,
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
