package settings

import (
	"time"

	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/google/uuid"
)

// SaveSettingsRequest updates the settings row. Absent fields are left untouched.
type SaveSettingsRequest struct {
	AdminPassword *string `json:"admin_password" binding:"omitempty,min=6,max=72"`
	ShopName      *string `json:"shop_name" binding:"omitempty,max=200"`
	ContactPhone  *string `json:"contact_phone" binding:"omitempty,max=50"`
	ContactEmail  *string `json:"contact_email" binding:"omitempty,max=200"`
	Telegram      *string `json:"telegram" binding:"omitempty,max=100"`
}

// ToPatch converts the request into a domain patch. An empty password means no change.
func (r SaveSettingsRequest) ToPatch() settings.Patch {
	patch := settings.Patch{
		ShopName:     r.ShopName,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		Telegram:     r.Telegram,
	}
	if r.AdminPassword != nil && *r.AdminPassword != "" {
		patch.AdminPassword = r.AdminPassword
	}
	return patch
}

// SettingsResponse is the admin view of the settings. The password hash is never included.
type SettingsResponse struct {
	ID           uuid.UUID `json:"id"`
	ShopName     string    `json:"shop_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	Telegram     string    `json:"telegram"`
	HasPassword  bool      `json:"has_password"`
	CreatedDate  time.Time `json:"created_date"`
	UpdatedDate  time.Time `json:"updated_date"`
}

// PublicSettings is the storefront view of the settings
type PublicSettings struct {
	ShopName     string `json:"shop_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
	Telegram     string `json:"telegram"`
}

// ToSettingsResponse converts the domain settings
func ToSettingsResponse(s *settings.Settings) SettingsResponse {
	return SettingsResponse{
		ID:           s.ID,
		ShopName:     s.ShopName,
		ContactPhone: s.ContactPhone,
		ContactEmail: s.ContactEmail,
		Telegram:     s.Telegram,
		HasPassword:  s.HasPassword(),
		CreatedDate:  s.CreatedAt,
		UpdatedDate:  s.UpdatedAt,
	}
}
