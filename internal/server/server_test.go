package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carexyz/internal/api"
	"carexyz/internal/auth"
	"carexyz/internal/booking"
	"carexyz/internal/catalog"
	"carexyz/internal/config"
	"carexyz/internal/payment"
	"carexyz/internal/testutil"
	"carexyz/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerSecret = "router-test-secret"

type routerFixture struct {
	server   *Server
	notifier *testutil.Notifier
}

func newRouterFixture(t *testing.T, cfg *config.Config, checks ...HealthCheck) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg == nil {
		cfg = &config.Config{Port: "0", RateLimitRPS: 1000, RateLimitBurst: 1000}
	}
	cfg.JWTSecret = routerSecret

	cat := testutil.NewCatalog()
	notifier := &testutil.Notifier{}
	users := testutil.Users{
		1: {ID: 1, Name: "Rahima", Email: "rahima@example.com", Role: user.RoleUser},
		9: {ID: 9, Name: "Admin", Email: "admin@example.com", Role: auth.RoleAdmin},
	}
	bookings := booking.NewService(testutil.NewBookingStore(), cat, users, notifier,
		testutil.NewClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)),
		booking.Timeouts{Catalog: time.Second, Store: time.Second, Notify: time.Second},
	)
	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     "sk_test_router",
		WebhookSecret: "whsec_router",
		Timeout:       time.Second,
		BackendURL:    "http://127.0.0.1:1",
	})
	payments := payment.NewService(bookings, cat, gateway, payment.Options{
		AppURL:         "http://localhost:3000",
		Currency:       "bdt",
		GatewayTimeout: time.Second,
	})

	handlers := Handlers{
		Users:    user.NewHandler(nil),
		Catalog:  catalog.NewHandler(cat),
		Bookings: booking.NewHandler(bookings),
		Payments: payment.NewHandler(payments),
	}
	return &routerFixture{
		server:   New(cfg, handlers, nil, checks...),
		notifier: notifier,
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, body interface{}, userID int, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		token, err := auth.GenerateAccessToken(userID, "caller@example.com", role, routerSecret)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

var newBookingBody = map[string]interface{}{
	"serviceId": "baby-care",
	"duration":  map[string]interface{}{"value": 3, "unit": "hours"},
	"location": map[string]interface{}{
		"division": "Dhaka", "district": "Dhaka", "city": "Dhaka",
		"area": "Dhanmondi", "address": "House 12, Road 5",
	},
}

func TestHealth(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		w := f.do(t, "GET", "/health", nil, 0, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Empty(t, resp.Checks)
	})

	t.Run("degraded dependency", func(t *testing.T) {
		f := newRouterFixture(t, nil,
			HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
			HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		)
		w := f.do(t, "GET", "/health", nil, 0, "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp api.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "down"}, resp.Checks)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestRouterPublicRoutes(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(t, "GET", "/services", nil, 0, "")
	require.Equal(t, http.StatusOK, w.Code)
	var services []catalog.Service
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &services))
	assert.Len(t, services, 3)

	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/services/sick-care", nil, 0, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/services/pet-care", nil, 0, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/metrics", nil, 0, "").Code)
}

func TestRouterRequiresAuth(t *testing.T) {
	f := newRouterFixture(t, nil)

	for _, route := range []struct{ method, path string }{
		{"GET", "/me"},
		{"POST", "/bookings"},
		{"GET", "/bookings"},
		{"GET", "/bookings/7f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f"},
		{"POST", "/bookings/7f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f/cancel"},
		{"POST", "/payments/checkout"},
		{"POST", "/payments/verify"},
		{"GET", "/admin/bookings"},
	} {
		w := f.do(t, route.method, route.path, nil, 0, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestRouterBookingFlow(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(t, "POST", "/bookings", newBookingBody, 1, user.RoleUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created booking.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 600.0, created.TotalCost)
	assert.Equal(t, 1, f.notifier.Count("booking_created"))

	w = f.do(t, "GET", "/bookings/"+created.ID, nil, 1, user.RoleUser)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/admin/bookings", nil, 1, user.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, "GET", "/admin/bookings", nil, 9, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	var all []booking.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = f.do(t, "PUT", "/admin/bookings/"+created.ID+"/status", map[string]string{"status": "Confirmed"}, 9, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"Confirmed"`)

	w = f.do(t, "POST", "/bookings/"+created.ID+"/cancel", nil, 1, user.RoleUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Cancelled"`)
}

func TestRouterAdminServices(t *testing.T) {
	f := newRouterFixture(t, nil)

	body := map[string]interface{}{
		"serviceId": "night-care", "name": "Night Care", "category": "elderly",
		"chargePerHour": 350, "chargePerDay": 3000,
	}
	assert.Equal(t, http.StatusForbidden, f.do(t, "POST", "/admin/services", body, 1, user.RoleUser).Code)

	w := f.do(t, "POST", "/admin/services", body, 9, auth.RoleAdmin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/services/night-care", nil, 0, "").Code)

	w = f.do(t, "PUT", "/admin/services/night-care/active", map[string]bool{"isActive": false}, 9, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/services/night-care", nil, 0, "").Code)
}

func TestRouterWebhookRejectsBadSignature(t *testing.T) {
	f := newRouterFixture(t, nil)

	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"invalid_signature"`)
}

func TestRouterRateLimitSparesWebhook(t *testing.T) {
	f := newRouterFixture(t, &config.Config{Port: "0", RateLimitRPS: 1, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/services", nil, 0, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/services", nil, 0, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, "GET", "/services", nil, 0, "").Code)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/health", nil, 0, "").Code)
}
