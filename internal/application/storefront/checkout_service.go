package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/greenshop/backend/internal/domain/cart"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderPlacer stores a new order
type OrderPlacer interface {
	Place(ctx context.Context, patch trade.OrderPatch) (*trade.Order, error)
}

// CheckoutRecorder receives checkout outcomes, typically business metrics
type CheckoutRecorder interface {
	RecordOrderPlaced(ctx context.Context, total decimal.Decimal, lines int)
	RecordCheckoutFailure(ctx context.Context, reason string)
}

// CheckoutService turns a session cart into an order
type CheckoutService struct {
	sessions *SessionService
	orders   OrderPlacer
	recorder CheckoutRecorder
	logger   *zap.Logger
}

// CheckoutOption configures a CheckoutService
type CheckoutOption func(*CheckoutService)

// WithCheckoutRecorder reports every checkout attempt to r
func WithCheckoutRecorder(r CheckoutRecorder) CheckoutOption {
	return func(s *CheckoutService) {
		s.recorder = r
	}
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(sessions *SessionService, orders OrderPlacer, logger *zap.Logger, opts ...CheckoutOption) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CheckoutService{sessions: sessions, orders: orders, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout places an order from the cart. The cart is cleared only after the order is stored;
// on failure the cart is left as it was. Once the order exists the checkout succeeds even if
// the cleared cart cannot be stored.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSessionID, sessionID)

	patch, err := checkoutPatch(req)
	if err != nil {
		s.recordFailure(ctx, err)
		return nil, err
	}

	var order *trade.Order
	session, err := s.sessions.withSession(ctx, sessionID, func(session *cart.Session) error {
		if session.Cart.IsEmpty() {
			return cart.ErrEmptyCart
		}
		patch.Items = orderItems(session.Cart.Items)
		total := session.Cart.Total()
		patch.Total = &total

		placed, err := s.orders.Place(ctx, patch)
		if err != nil {
			return err
		}
		order = placed
		session.Cart.Clear()
		return nil
	})
	switch {
	case order != nil && errors.Is(err, errSessionNotSaved):
		logger.For(ctx, s.logger).Warn("Order placed but cart was not cleared",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	case err != nil:
		telemetry.RecordError(span, err)
		s.recordFailure(ctx, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrAmount, order.Total.String(),
		telemetry.SpanAttrItemsCount, len(order.Items),
	)
	if s.recorder != nil {
		s.recorder.RecordOrderPlaced(ctx, order.Total, len(order.Items))
	}

	logger.For(ctx, s.logger).Info("Checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()))

	return &CheckoutResponse{
		OrderID: order.ID,
		Total:   order.Total,
		Status:  string(order.Status),
		Session: ToSessionResponse(session),
	}, nil
}

func (s *CheckoutService) recordFailure(ctx context.Context, err error) {
	if s.recorder == nil {
		return
	}
	reason := "internal"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		reason = strings.ToLower(domainErr.Code)
	}
	s.recorder.RecordCheckoutFailure(ctx, reason)
}

func checkoutPatch(req CheckoutRequest) (trade.OrderPatch, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)
	address := strings.TrimSpace(req.DeliveryAddress)
	if name == "" || phone == "" || address == "" {
		return trade.OrderPatch{}, shared.NewDomainError("INVALID_CUSTOMER", "Name, phone and delivery address are required")
	}

	email := strings.TrimSpace(req.CustomerEmail)
	notes := strings.TrimSpace(req.Notes)
	status := trade.OrderStatusPending

	return trade.OrderPatch{
		CustomerName:    &name,
		CustomerPhone:   &phone,
		CustomerEmail:   &email,
		DeliveryAddress: &address,
		Notes:           &notes,
		Status:          &status,
	}, nil
}

func orderItems(items []cart.Item) []trade.OrderItem {
	out := make([]trade.OrderItem, len(items))
	for i, item := range items {
		out[i] = trade.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return out
}
