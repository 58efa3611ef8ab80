package settings

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for the admin password
var PasswordCost = bcrypt.DefaultCost

// emails uses the same "email" rule as request binding
var emails = validator.New()

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
)

// Settings is the single shop configuration row
type Settings struct {
	shared.BaseEntity
	AdminPasswordHash string
	ShopName          string
	ContactPhone      string
	ContactEmail      string
	Telegram          string
}

// Patch carries writable settings fields; nil fields are left untouched.
// AdminPassword is plain text and is hashed when applied.
type Patch struct {
	AdminPassword *string
	ShopName      *string
	ContactPhone  *string
	ContactEmail  *string
	Telegram      *string
}

// Validate checks every field present in the patch
func (p Patch) Validate() error {
	if p.AdminPassword != nil {
		if err := validatePassword(*p.AdminPassword); err != nil {
			return err
		}
	}
	if p.ContactEmail != nil && strings.TrimSpace(*p.ContactEmail) != "" {
		if err := emails.Var(strings.TrimSpace(*p.ContactEmail), "email"); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid contact email")
		}
	}
	return nil
}

// New creates the settings row. String fields default to empty.
func New(patch Patch) (*Settings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	s := &Settings{BaseEntity: shared.NewBaseEntity()}
	if err := s.apply(patch); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply validates and merges a patch
func (s *Settings) Apply(patch Patch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.apply(patch); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Settings) apply(patch Patch) error {
	if patch.AdminPassword != nil {
		hash, err := HashPassword(*patch.AdminPassword)
		if err != nil {
			return err
		}
		s.AdminPasswordHash = hash
	}
	if patch.ShopName != nil {
		s.ShopName = strings.TrimSpace(*patch.ShopName)
	}
	if patch.ContactPhone != nil {
		s.ContactPhone = strings.TrimSpace(*patch.ContactPhone)
	}
	if patch.ContactEmail != nil {
		s.ContactEmail = strings.TrimSpace(*patch.ContactEmail)
	}
	if patch.Telegram != nil {
		s.Telegram = strings.TrimSpace(*patch.Telegram)
	}
	return nil
}

// HasPassword reports whether an admin password has been set
func (s *Settings) HasPassword() bool {
	return s.AdminPasswordHash != ""
}

// VerifyPassword verifies if the provided password matches the stored hash
func (s *Settings) VerifyPassword(password string) bool {
	if s.AdminPasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.AdminPasswordHash), []byte(password)) == nil
}

// HashPassword validates and hashes a plain password
func HashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 bytes")
	}
	return nil
}

// Repository defines the interface for settings persistence.
// There is at most one row.
type Repository interface {
	// Get returns the settings row or shared.ErrNotFound when none exists
	Get(ctx context.Context) (*Settings, error)

	// Create inserts the settings row
	Create(ctx context.Context, s *Settings) error

	// Update merges patch into the row with the given id and writes only the
	// columns the patch carries. Returns shared.ErrNotFound for an unknown id.
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Settings, error)

	// Delete removes the settings row
	Delete(ctx context.Context, id uuid.UUID) error
}
