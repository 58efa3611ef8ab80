// Package storefront implements the shopper-facing use cases: the cart and favorites
// session, checkout and the storefront bootstrap payload.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	appcatalog "github.com/greenshop/backend/internal/application/catalog"
	"github.com/greenshop/backend/internal/domain/cart"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductSource resolves products for cart snapshots and the favorites list
type ProductSource interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]appcatalog.ProductResponse, error)
}

// CartActionRecorder counts session mutations
type CartActionRecorder interface {
	RecordCartAction(ctx context.Context, action telemetry.CartAction)
}

// SessionService owns the cart and favorites of every shopper session.
// Each mutation loads the session, applies one transition and saves it before returning.
type SessionService struct {
	store    cart.SessionStore
	products ProductSource
	locks    *keyedMutex
	recorder CartActionRecorder
	now      func() time.Time
	logger   *zap.Logger
}

// SessionOption configures a SessionService
type SessionOption func(*SessionService)

// WithCartActionRecorder reports every successful mutation to r
func WithCartActionRecorder(r CartActionRecorder) SessionOption {
	return func(s *SessionService) {
		s.recorder = r
	}
}

// NewSessionService creates a new SessionService
func NewSessionService(store cart.SessionStore, products ProductSource, logger *zap.Logger, opts ...SessionOption) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{
		store:    store,
		products: products,
		locks:    newKeyedMutex(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveID returns id when it is a well-formed session id, otherwise a fresh one.
// The second result reports whether a new id was issued.
func ResolveID(id string) (string, bool) {
	if id != "" && cart.ValidateSessionID(id) == nil {
		return id, false
	}
	return uuid.NewString(), true
}

// Get returns the session, or an empty one for ids never saved
func (s *SessionService) Get(ctx context.Context, id string) (*SessionResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// AddItem snapshots the product into the cart, incrementing an existing line
func (s *SessionService) AddItem(ctx context.Context, id string, req AddItemRequest) (*SessionResponse, error) {
	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, telemetry.CartActionAdd, func(session *cart.Session) error {
		session.Cart.Add(cart.ItemFromProduct(product, req.Quantity))
		return nil
	})
}

// UpdateQuantity shifts a line quantity by delta, never below 1. Unknown products are ignored.
func (s *SessionService) UpdateQuantity(ctx context.Context, id string, productID uuid.UUID, delta int) (*SessionResponse, error) {
	return s.mutate(ctx, id, telemetry.CartActionUpdate, func(session *cart.Session) error {
		session.Cart.UpdateQuantity(productID, delta)
		return nil
	})
}

// RemoveItem drops a line from the cart
func (s *SessionService) RemoveItem(ctx context.Context, id string, productID uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, id, telemetry.CartActionRemove, func(session *cart.Session) error {
		session.Cart.Remove(productID)
		return nil
	})
}

// ClearCart empties the cart and keeps the favorites
func (s *SessionService) ClearCart(ctx context.Context, id string) (*SessionResponse, error) {
	return s.mutate(ctx, id, telemetry.CartActionClear, func(session *cart.Session) error {
		session.Cart.Clear()
		return nil
	})
}

// ToggleFavorite flips the favorite state of a product
func (s *SessionService) ToggleFavorite(ctx context.Context, id string, productID uuid.UUID) (*ToggleFavoriteResponse, error) {
	var favorite bool
	resp, err := s.mutate(ctx, id, telemetry.CartActionToggleFavorite, func(session *cart.Session) error {
		favorite = session.Favorites.Toggle(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ToggleFavoriteResponse{ProductID: productID, IsFavorite: favorite, Session: *resp}, nil
}

// FavoriteProducts returns the catalog products marked as favorite.
// Favorites pointing at deleted products are skipped.
func (s *SessionService) FavoriteProducts(ctx context.Context, id string) ([]appcatalog.ProductResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.products.ByIDs(ctx, session.Favorites.ProductIDs)
}

// mutate runs fn on the session under its lock and persists the result
func (s *SessionService) mutate(ctx context.Context, id string, action telemetry.CartAction, fn func(*cart.Session) error) (*SessionResponse, error) {
	session, err := s.withSession(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordCartAction(ctx, action)
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// errSessionNotSaved is returned with the mutated session when fn succeeded
// but the store rejected the write
var errSessionNotSaved = errors.New("failed to save session")

func (s *SessionService) withSession(ctx context.Context, id string, fn func(*cart.Session) error) (*cart.Session, error) {
	if err := cart.ValidateSessionID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return session, fmt.Errorf("%w: %w", errSessionNotSaved, err)
	}
	return session, nil
}

func (s *SessionService) load(ctx context.Context, id string) (*cart.Session, error) {
	if err := cart.ValidateSessionID(id); err != nil {
		return nil, err
	}
	session, err := s.store.Load(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return cart.EmptySession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	session.Normalize()
	return session, nil
}
