package models

import (
	"github.com/greenshop/backend/internal/domain/settings"
)

// SettingsModel is the persistence model for the shop settings row.
type SettingsModel struct {
	BaseModel
	AdminPasswordHash string `gorm:"type:varchar(100);not null;default:''"`
	ShopName          string `gorm:"type:varchar(200);not null;default:''"`
	ContactPhone      string `gorm:"type:varchar(50);not null;default:''"`
	ContactEmail      string `gorm:"type:varchar(200);not null;default:''"`
	Telegram          string `gorm:"type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Settings entity.
func (m *SettingsModel) ToDomain() *settings.Settings {
	return &settings.Settings{
		BaseEntity:        m.BaseModel.ToDomain(),
		AdminPasswordHash: m.AdminPasswordHash,
		ShopName:          m.ShopName,
		ContactPhone:      m.ContactPhone,
		ContactEmail:      m.ContactEmail,
		Telegram:          m.Telegram,
	}
}

// FromDomain populates the persistence model from a domain Settings entity.
func (m *SettingsModel) FromDomain(s *settings.Settings) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.AdminPasswordHash = s.AdminPasswordHash
	m.ShopName = s.ShopName
	m.ContactPhone = s.ContactPhone
	m.ContactEmail = s.ContactEmail
	m.Telegram = s.Telegram
}

// SettingsModelFromDomain creates a new persistence model from a domain Settings entity.
func SettingsModelFromDomain(s *settings.Settings) *SettingsModel {
	m := &SettingsModel{}
	m.FromDomain(s)
	return m
}

// SettingsPatchColumns maps the fields present in patch to column values
// taken from the already patched row s.
func SettingsPatchColumns(s *settings.Settings, patch settings.Patch) map[string]any {
	cols := map[string]any{"updated_at": s.UpdatedAt}
	if patch.AdminPassword != nil {
		cols["admin_password_hash"] = s.AdminPasswordHash
	}
	if patch.ShopName != nil {
		cols["shop_name"] = s.ShopName
	}
	if patch.ContactPhone != nil {
		cols["contact_phone"] = s.ContactPhone
	}
	if patch.ContactEmail != nil {
		cols["contact_email"] = s.ContactEmail
	}
	if patch.Telegram != nil {
		cols["telegram"] = s.Telegram
	}
	return cols
}
