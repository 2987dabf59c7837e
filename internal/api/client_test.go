package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Session: staticToken(token)})
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"cart":{"items":[]}}`))
	})

	c := newTestClient(t, handler, "tok-123")
	_, err := c.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoAuthorizationHeaderWhenSignedOut(t *testing.T) {
	var hasAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"success":true,"products":[]}`))
	})

	c := newTestClient(t, handler, "")
	_, err := c.Products(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestServerMessageSurfacesInError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Authentication required"}`))
	})

	c := newTestClient(t, handler, "")
	_, err := c.GetCart(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Authentication required", apiErr.Message)
	assert.Equal(t, "Authentication required", UserMessage(err))
}

func TestUserMessageFallsBackWhenServerSaysNothing(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	})

	c := newTestClient(t, handler, "tok")
	_, err := c.GetCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Request failed", UserMessage(err))
}

func TestCreateOrderValidatedBeforeRequest(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"success":true,"order":{"_id":"ord-1"}}`))
	})

	c := newTestClient(t, handler, "tok")
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		OrderType:   "drone",
		TotalAmount: 100,
	})
	require.Error(t, err)
	assert.Equal(t, 0, requests)

	_, err = c.CreateOrder(context.Background(), CreateOrderRequest{
		OrderType:   "food",
		TotalAmount: -1,
	})
	require.Error(t, err)
	assert.Equal(t, 0, requests)
}

func TestBreakerOpensAfterConsecutiveServerErrors(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	})

	c := newTestClient(t, handler, "tok")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.GetCart(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, 5, requests)

	_, err := c.GetCart(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, requests)
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Order not found"}`))
	})

	c := newTestClient(t, handler, "tok")
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := c.OrderByID(ctx, "nope")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, 8, requests)
}

func TestCartItemPricesFromProductSubdocument(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"cart":{"items":[
			{"_id":"i1","quantity":2,"product":{"_id":"p1","name":"Idli","price":60}},
			{"_id":"i2","quantity":1,"name":"Vada","price":40,"productId":"p2"}
		],"totalAmount":160}}`))
	})

	c := newTestClient(t, handler, "tok")
	view, err := c.GetCart(context.Background())
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, "p1", view.Items[0].ProductID)
	assert.Equal(t, "Idli", view.Items[0].Name)
	assert.InDelta(t, 60, view.Items[0].UnitPrice, 1e-9)
	assert.Equal(t, "Vada", view.Items[1].Name)
	require.NotNil(t, view.TotalAmount)
	assert.InDelta(t, 160, *view.TotalAmount, 1e-9)
}
