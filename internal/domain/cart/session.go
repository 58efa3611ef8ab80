package cart

import (
	"context"
	"time"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrInvalidSessionID is returned for malformed session identifiers
var ErrInvalidSessionID = shared.NewDomainError("INVALID_SESSION", "Invalid session id")

// Session is the per-shopper state: cart and favorites
type Session struct {
	ID        string    `json:"id"`
	Cart      Cart      `json:"cart"`
	Favorites Favorites `json:"favorites"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session with a random id
func NewSession() *Session {
	return EmptySession(uuid.NewString())
}

// EmptySession creates an empty session with the given id
func EmptySession(id string) *Session {
	return &Session{
		ID:        id,
		Cart:      Cart{Items: []Item{}},
		Favorites: Favorites{ProductIDs: []uuid.UUID{}},
		UpdatedAt: time.Now(),
	}
}

// Normalize makes sure collections are never nil
func (s *Session) Normalize() {
	if s.Cart.Items == nil {
		s.Cart.Items = []Item{}
	}
	if s.Favorites.ProductIDs == nil {
		s.Favorites.ProductIDs = []uuid.UUID{}
	}
}

// ValidateSessionID checks that id is a UUID string
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidSessionID
	}
	return nil
}

// SessionStore persists sessions. Load returns shared.ErrNotFound for unknown ids.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}
