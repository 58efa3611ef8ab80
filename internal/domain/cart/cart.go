// Package cart holds the shopper's cart and favorites and the transitions over them.
package cart

import (
	"slices"

	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when checking out a cart without items
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cart is empty")

// MaxQuantity caps a single cart line
const MaxQuantity = 999

func clampQuantity(q int) int {
	return min(max(1, q), MaxQuantity)
}

// Item is a product snapshot plus the requested quantity, kept within [1, MaxQuantity].
type Item struct {
	ProductID uuid.UUID        `json:"product_id"`
	Title     string           `json:"title"`
	Price     decimal.Decimal  `json:"price"`
	Image     string           `json:"image,omitempty"`
	Category  catalog.Category `json:"category,omitempty"`
	Quantity  int              `json:"quantity"`
}

// Subtotal returns price * quantity
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemFromProduct snapshots the product fields a cart line needs
func ItemFromProduct(p *catalog.Product, qty int) Item {
	return Item{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.PrimaryImage(),
		Category:  p.Category,
		Quantity:  clampQuantity(qty),
	}
}

// Cart is an ordered list of items keyed by product id
type Cart struct {
	Items []Item `json:"items"`
}

// Add increments the quantity of an existing entry or appends a new one at
// the end. The line saturates at MaxQuantity.
func (c *Cart) Add(item Item) {
	qty := clampQuantity(item.Quantity)
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity = clampQuantity(c.Items[i].Quantity + qty)
			return
		}
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
}

// UpdateQuantity moves quantity by delta, saturating at 1 and MaxQuantity.
// It never removes an entry; unknown product ids are ignored. Reports
// whether an entry was found.
func (c *Cart) UpdateQuantity(productID uuid.UUID, delta int) bool {
	delta = min(max(delta, -MaxQuantity), MaxQuantity)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = clampQuantity(c.Items[i].Quantity + delta)
			return true
		}
	}
	return false
}

// Remove drops the entry regardless of its quantity
func (c *Cart) Remove(productID uuid.UUID) bool {
	before := len(c.Items)
	c.Items = slices.DeleteFunc(c.Items, func(it Item) bool { return it.ProductID == productID })
	return len(c.Items) != before
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []Item{}
}

// Total sums price * quantity over all entries
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemsCount sums quantities, as opposed to the number of entries
func (c *Cart) ItemsCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no entries
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Favorites is an ordered set of product ids
type Favorites struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// Toggle adds the id when absent and removes it when present.
// Reports whether the id is a favorite afterwards.
func (f *Favorites) Toggle(productID uuid.UUID) bool {
	if i := slices.Index(f.ProductIDs, productID); i >= 0 {
		f.ProductIDs = slices.Delete(f.ProductIDs, i, i+1)
		return false
	}
	f.ProductIDs = append(f.ProductIDs, productID)
	return true
}

// Contains reports whether the id is a favorite
func (f *Favorites) Contains(productID uuid.UUID) bool {
	return slices.Contains(f.ProductIDs, productID)
}
