package persistence

import (
	"strings"

	"github.com/greenshop/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// SortColumns maps public order keys to database columns. Keys not present
// in the map fall back to created_at, so user input never reaches SQL.
type SortColumns map[string]string

// ProductSortColumns contains allowed order keys for products
var ProductSortColumns = SortColumns{
	"created_date": "created_at",
	"updated_date": "updated_at",
	"title":        "title",
	"price":        "price",
	"old_price":    "old_price",
	"category":     "category",
	"in_stock":     "in_stock",
	"featured":     "featured",
}

// OrderSortColumns contains allowed order keys for orders
var OrderSortColumns = SortColumns{
	"created_date":  "created_at",
	"updated_date":  "updated_at",
	"total":         "total",
	"status":        "status",
	"customer_name": "customer_name",
}

// OrderClause builds the ORDER BY clause for spec.
// Unknown fields use the default field; direction is always explicit.
// id is appended as a tie-breaker so equal keys have a stable order.
func (c SortColumns) OrderClause(spec shared.OrderSpec) string {
	column, ok := c[spec.Field]
	if !ok {
		column = c[shared.DefaultOrderField]
		if column == "" {
			column = "created_at"
		}
	}
	return column + " " + ValidateSortOrder(directionOf(spec)) + ", id ASC"
}

func directionOf(spec shared.OrderSpec) string {
	if spec.Desc {
		return "DESC"
	}
	return "ASC"
}
