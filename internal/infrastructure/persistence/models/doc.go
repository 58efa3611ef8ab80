// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table
// - catalog.go: products
// - trade.go: orders (items are stored inline as JSON snapshots)
// - settings.go: the single shop settings row
package models
