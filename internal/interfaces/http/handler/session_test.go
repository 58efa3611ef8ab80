package handler

import (
	"context"
	"math"
	"net/http"
	"testing"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	"github.com/greenshop/backend/internal/application/storefront"
	tradeapp "github.com/greenshop/backend/internal/application/trade"
	"github.com/greenshop/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionHandler_CartFlow(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 200, "plants", true)
	sid := uuid.NewString()

	w := f.do(http.MethodPost, "/api/v1/session/cart/items", body{"product_id": fern}, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(http.MethodPost, "/api/v1/session/cart/items", body{"product_id": fern}, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)

	var session storefront.SessionResponse
	dataAs(t, w, &session)
	require.Len(t, session.Items, 1)
	assert.Equal(t, 2, session.Items[0].Quantity)

	w = f.do(http.MethodPatch, "/api/v1/session/cart/items/"+fern.String(), body{"delta": 5}, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)
	dataAs(t, w, &session)
	assert.Equal(t, 7, session.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1400).Equal(session.Total))

	w = f.do(http.MethodPatch, "/api/v1/session/cart/items/"+fern.String(), body{"delta": -100}, withSession(sid))
	dataAs(t, w, &session)
	assert.Equal(t, 1, session.Items[0].Quantity)

	w = f.do(http.MethodDelete, "/api/v1/session/cart/items/"+fern.String(), nil, withSession(sid))
	dataAs(t, w, &session)
	assert.Empty(t, session.Items)

	w = f.do(http.MethodGet, "/api/v1/session", nil, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sid, w.Header().Get("X-Session-ID"))
	dataAs(t, w, &session)
	assert.Equal(t, sid, session.ID)
}

func TestSessionHandler_AddUnknownProduct(t *testing.T) {
	f := newShopFixture(t)

	w := f.do(http.MethodPost, "/api/v1/session/cart/items", body{"product_id": uuid.New()}, withSession(uuid.NewString()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_AddItemValidation(t *testing.T) {
	f := newShopFixture(t)

	w := f.do(http.MethodPost, "/api/v1/session/cart/items", body{"quantity": 1}, withSession(uuid.NewString()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "product_id", resp.Error.Details[0].Field)
}

func TestSessionHandler_UpdateQuantityBounds(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 200, "plants", true)
	sid := uuid.NewString()
	f.do(http.MethodPost, "/api/v1/session/cart/items", body{"product_id": fern, "quantity": 3}, withSession(sid))
	path := "/api/v1/session/cart/items/" + fern.String()

	w := f.do(http.MethodPatch, path, body{"delta": int64(math.MaxInt64)}, withSession(sid))
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "delta", resp.Error.Details[0].Field)

	w = f.do(http.MethodPatch, path, body{"delta": 999}, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodPatch, path, body{"delta": 999}, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)

	var session storefront.SessionResponse
	dataAs(t, w, &session)
	require.Len(t, session.Items, 1)
	assert.Equal(t, 999, session.Items[0].Quantity)
}

func TestSessionHandler_ClearCart(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 200, "plants", true)
	sid := uuid.NewString()
	f.do(http.MethodPost, "/api/v1/session/cart/items", body{"product_id": fern, "quantity": 3}, withSession(sid))

	w := f.do(http.MethodDelete, "/api/v1/session/cart", nil, withSession(sid))

	var session storefront.SessionResponse
	dataAs(t, w, &session)
	assert.Empty(t, session.Items)
	assert.True(t, session.Total.IsZero())
}

func TestSessionHandler_Favorites(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 200, "plants", true)
	sid := uuid.NewString()

	w := f.do(http.MethodPost, "/api/v1/session/favorites/"+fern.String()+"/toggle", nil, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)
	var toggled storefront.ToggleFavoriteResponse
	dataAs(t, w, &toggled)
	assert.True(t, toggled.IsFavorite)

	w = f.do(http.MethodGet, "/api/v1/session/favorites/products", nil, withSession(sid))
	var favorites []catalogapp.ProductResponse
	dataAs(t, w, &favorites)
	require.Len(t, favorites, 1)
	assert.Equal(t, fern, favorites[0].ID)

	w = f.do(http.MethodPost, "/api/v1/session/favorites/"+fern.String()+"/toggle", nil, withSession(sid))
	dataAs(t, w, &toggled)
	assert.False(t, toggled.IsFavorite)
	assert.Empty(t, toggled.Session.Favorites)
}

func TestCheckoutHandler_PlacesOrderAndClearsCart(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 200, "plants", true)
	sid := uuid.NewString()
	f.do(http.MethodPost, "/api/v1/session/cart/items", body{"product_id": fern, "quantity": 2}, withSession(sid))

	w := f.do(http.MethodPost, "/api/v1/checkout", body{
		"customer_name":    "Ann",
		"customer_phone":   "+1 555 0100",
		"delivery_address": "1 Garden Rd",
	}, withSession(sid))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp storefront.CheckoutResponse
	dataAs(t, w, &resp)
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, decimal.NewFromInt(400).Equal(resp.Total))
	assert.Empty(t, resp.Session.Items)

	order, err := f.orders.GetByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Fern", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCheckoutHandler_EmptyCart(t *testing.T) {
	f := newShopFixture(t)

	w := f.do(http.MethodPost, "/api/v1/checkout", body{
		"customer_name":    "Ann",
		"customer_phone":   "555",
		"delivery_address": "1 Garden Rd",
	}, withSession(uuid.NewString()))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeEmptyCart, decodeResponse(t, w).Error.Code)

	orders, err := f.orders.List(context.Background(), tradeapp.OrderListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutHandler_Validation(t *testing.T) {
	f := newShopFixture(t)

	w := f.do(http.MethodPost, "/api/v1/checkout", body{
		"customer_name":    "Ann",
		"customer_phone":   "555",
		"delivery_address": "1 Garden Rd",
		"customer_email":   "not-an-email",
	}, withSession(uuid.NewString()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
}

// body is a JSON object literal
type body = map[string]any
