package storefront

import (
	"github.com/greenshop/backend/internal/application/settings"
	"github.com/greenshop/backend/internal/domain/cart"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=999"`
}

// UpdateQuantityRequest changes a cart line quantity by Delta
type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required,min=-999,max=999"`
}

// CheckoutRequest carries the customer details for placing an order
type CheckoutRequest struct {
	CustomerName    string `json:"customer_name" binding:"required,max=200"`
	CustomerPhone   string `json:"customer_phone" binding:"required,max=50"`
	CustomerEmail   string `json:"customer_email" binding:"omitempty,email,max=200"`
	DeliveryAddress string `json:"delivery_address" binding:"required,max=500"`
	Notes           string `json:"notes" binding:"max=2000"`
}

// CartItemResponse is a cart line with its subtotal
type CartItemResponse struct {
	cart.Item
	Subtotal decimal.Decimal `json:"subtotal"`
}

// SessionResponse is the shopper state returned after every session call
type SessionResponse struct {
	ID         string             `json:"id"`
	Items      []CartItemResponse `json:"items"`
	ItemsCount int                `json:"items_count"`
	Total      decimal.Decimal    `json:"total"`
	Favorites  []uuid.UUID        `json:"favorites"`
}

// ToSessionResponse converts a session. Totals are recomputed on every call.
func ToSessionResponse(s *cart.Session) SessionResponse {
	items := make([]CartItemResponse, len(s.Cart.Items))
	for i, item := range s.Cart.Items {
		items[i] = CartItemResponse{Item: item, Subtotal: item.Subtotal()}
	}
	favorites := s.Favorites.ProductIDs
	if favorites == nil {
		favorites = []uuid.UUID{}
	}
	return SessionResponse{
		ID:         s.ID,
		Items:      items,
		ItemsCount: s.Cart.ItemsCount(),
		Total:      s.Cart.Total(),
		Favorites:  favorites,
	}
}

// ToggleFavoriteResponse reports the favorite state after a toggle
type ToggleFavoriteResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	IsFavorite bool            `json:"is_favorite"`
	Session    SessionResponse `json:"session"`
}

// CheckoutResponse is returned after an order has been placed
type CheckoutResponse struct {
	OrderID uuid.UUID       `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
	Status  string          `json:"status"`
	Session SessionResponse `json:"session"`
}

// BootstrapResponse carries everything the storefront needs before its first render
type BootstrapResponse struct {
	Settings          settings.PublicSettings       `json:"settings"`
	Taxonomy          map[catalog.Category][]string `json:"taxonomy"`
	Categories        []catalog.Category            `json:"categories"`
	Conditions        []catalog.Condition           `json:"conditions"`
	SortKeys          []catalog.SortKey             `json:"sort_keys"`
	DefaultPriceRange catalog.PriceRange            `json:"default_price_range"`
	SessionID         string                        `json:"session_id"`
}
