package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/adapter/handler"
	"github.com/srgjo27/urban_spark/internal/adapter/payment"
	"github.com/srgjo27/urban_spark/internal/adapter/repository/local"
	"github.com/srgjo27/urban_spark/internal/adapter/repository/session"
	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/services"
)

const testPIN = "899336"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, loginRate string) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()

	repo := local.NewBookingRepository(local.NewFileBlob(filepath.Join(t.TempDir(), "bookings.json")), logger)
	store := session.NewMemoryStore(logger)
	catalog := domain.DefaultCatalog()
	gateway := payment.NewSimulatedGateway(0, 0, logger)

	bookingService := services.NewBookingService(repo, nil, services.RetryConfig{Attempts: 1}, logger)
	wizardService := services.NewWizardService(catalog, store.Drafts(), bookingService, gateway, services.WizardConfig{
		DraftTTL:       time.Hour,
		PaymentTimeout: time.Second,
	}, logger)
	adminService := services.NewAdminService(testPIN, store.AdminSessions(), time.Hour, logger)

	router, err := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: []string{"*"},
		LoginRate:      loginRate,
		PaymentGateway: gateway.Name(),
	}, handler.Handlers{
		Catalog:  handler.NewCatalogHandler(catalog),
		Wizard:   handler.NewWizardHandler(wizardService),
		Bookings: handler.NewBookingHandler(bookingService),
		Admin:    handler.NewAdminHandler(adminService, bookingService, 3600, logger),
	}, adminService, bookingService, logger)
	require.NoError(t, err)

	return router
}

func do(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type draftBody struct {
	ID       string  `json:"id"`
	Step     int     `json:"step"`
	StepName string  `json:"stepName"`
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
	Removed  bool    `json:"removed"`
	Cart     struct {
		Items []domain.CartItem `json:"items"`
	} `json:"cart"`
}

type errorBody struct {
	Error string `json:"error"`
	Step  int    `json:"step"`
	Field string `json:"field"`
	Retry bool   `json:"retry"`
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"pin": testPIN}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](t, w).Token
}

// book runs the whole wizard over HTTP and returns the stored booking.
func book(t *testing.T, router http.Handler) domain.Booking {
	t.Helper()

	w := do(t, router, http.MethodPost, "/api/wizard", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	base := "/api/wizard/" + decode[draftBody](t, w).ID

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/items", map[string]string{"serviceId": "home-deep", "packageId": "h-basic"}},
		{http.MethodPost, "/items", map[string]string{"serviceId": "veh-bike", "packageId": "b-wash"}},
		{http.MethodPost, "/continue", nil},
		{http.MethodPut, "/schedule", map[string]string{"date": "2026-11-02", "time": "10:00 AM"}},
		{http.MethodPost, "/continue", nil},
		{http.MethodPut, "/contact", map[string]string{"customerName": "Jane Doe", "customerPhone": "555-123-4567", "address": "1 Main St"}},
		{http.MethodPost, "/continue", nil},
		{http.MethodPut, "/payment-method", map[string]string{"paymentMethod": "Online"}},
	}
	for _, s := range steps {
		w := do(t, router, s.method, base+s.path, s.body, "")
		require.Equal(t, http.StatusOK, w.Code, "%s %s: %s", s.method, s.path, w.Body.String())
	}

	w = do(t, router, http.MethodPost, base+"/submit", map[string]string{"cardNumber": "4242424242424242", "cardExpiry": "12/30", "cardCvc": "123"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Booking](t, w)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, "100-M")

	w := do(t, router, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "local-file", body["bookingBackend"])
	assert.Equal(t, "simulated", body["paymentGateway"])
}

func TestCatalogRoutes(t *testing.T) {
	router := newTestRouter(t, "100-M")

	w := do(t, router, http.MethodGet, "/api/services?category=Vehicle%20Wash", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	vehicle := decode[struct {
		Services []domain.Service `json:"services"`
	}](t, w).Services
	require.Len(t, vehicle, 2)
	for _, s := range vehicle {
		assert.Equal(t, domain.CategoryVehicle, s.Category)
	}

	w = do(t, router, http.MethodGet, "/api/services?category=All", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/services?category=Gardening", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/services/home-deep", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[domain.Service](t, w).Packages, 3)

	w = do(t, router, http.MethodGet, "/api/services/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/timeslots", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]string](t, w)["timeSlots"], 9)
}

func TestWizardFlowAndTracking(t *testing.T) {
	router := newTestRouter(t, "100-M")

	booking := book(t, router)

	assert.Equal(t, 119.7, booking.TotalAmount)
	assert.Equal(t, domain.PaymentPaid, booking.PaymentStatus)
	assert.Equal(t, "5551234567", booking.CustomerPhone)

	w := do(t, router, http.MethodGet, "/api/bookings/"+strings.ToLower(booking.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tracked := decode[services.TrackingResponse](t, w)
	assert.Equal(t, booking.ID, tracked.Booking.ID)
	require.Len(t, tracked.Timeline, 3)
	assert.Equal(t, domain.StepActive, tracked.Timeline[1].State)

	w = do(t, router, http.MethodGet, "/api/bookings/NOPE12345", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizardValidationErrors(t *testing.T) {
	router := newTestRouter(t, "100-M")

	w := do(t, router, http.MethodPost, "/api/wizard", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode[draftBody](t, w)
	assert.Equal(t, 1, draft.Step)
	assert.Equal(t, "SelectingServices", draft.StepName)
	base := "/api/wizard/" + draft.ID

	w = do(t, router, http.MethodPost, base+"/continue", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/items", map[string]string{"serviceId": "home-deep", "packageId": "b-wash"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/items", map[string]string{"serviceId": "home-deep", "packageId": "h-basic"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	draft = decode[draftBody](t, w)
	assert.Equal(t, 99.0, draft.Subtotal)
	assert.Equal(t, 103.95, draft.Total)

	w = do(t, router, http.MethodDelete, base+"/items/7", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[draftBody](t, w).Removed)

	w = do(t, router, http.MethodDelete, base+"/items/x", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/continue", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, base+"/schedule", map[string]string{"date": "2026-11-02", "time": "11:30 PM"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, base+"/continue", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	errResp := decode[errorBody](t, w)
	assert.Equal(t, "time", errResp.Field)
	assert.Equal(t, 2, errResp.Step)

	w = do(t, router, http.MethodPut, base+"/contact", map[string]string{"customerEmail": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPut, base+"/payment-method", map[string]string{"paymentMethod": "Crypto"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/wizard/unknown/continue", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCashSubmitWithEmptyBody(t *testing.T) {
	router := newTestRouter(t, "100-M")

	w := do(t, router, http.MethodPost, "/api/wizard", nil, "")
	base := "/api/wizard/" + decode[draftBody](t, w).ID

	do(t, router, http.MethodPost, base+"/items", map[string]string{"serviceId": "veh-car", "packageId": "c-ext"}, "")
	do(t, router, http.MethodPost, base+"/continue", nil, "")
	do(t, router, http.MethodPut, base+"/schedule", map[string]string{"date": "2026-11-02", "time": "08:00 AM"}, "")
	do(t, router, http.MethodPost, base+"/continue", nil, "")
	do(t, router, http.MethodPut, base+"/contact", map[string]string{"customerName": "Sam", "customerPhone": "5550001111", "address": "9 Hill Rd"}, "")
	do(t, router, http.MethodPost, base+"/continue", nil, "")
	w = do(t, router, http.MethodPut, base+"/payment-method", map[string]string{"paymentMethod": "Cash"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, base+"/submit", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	b := decode[domain.Booking](t, w)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.Empty(t, b.TransactionID)
	assert.Equal(t, 26.25, b.TotalAmount)

	w = do(t, router, http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLoginAndGuard(t *testing.T) {
	router := newTestRouter(t, "100-M")

	w := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"pin": "0000"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/api/admin/login", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/admin/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/admin/bookings", nil, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, router)

	w = do(t, router, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/admin/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLoginIsRateLimited(t *testing.T) {
	router := newTestRouter(t, "2-M")

	for i := 0; i < 2; i++ {
		w := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"pin": "0000"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := do(t, router, http.MethodPost, "/api/admin/login", map[string]string{"pin": testPIN}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAdminListAndUpdateStatus(t *testing.T) {
	router := newTestRouter(t, "100-M")
	booking := book(t, router)
	token := login(t, router)

	w := do(t, router, http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/status", map[string]string{"status": "Confirmed"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.Booking](t, w)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)
	assert.Equal(t, booking.TotalAmount, updated.TotalAmount)
	assert.Equal(t, booking.TransactionID, updated.TransactionID)

	w = do(t, router, http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/status", map[string]string{"status": "Lost"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/api/admin/bookings/MISSING00/status", map[string]string{"status": "Completed"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/admin/bookings?status=Confirmed", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[services.BookingListResponse](t, w)
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, 1, list.Stats.Total)
	assert.InDelta(t, 119.7, list.Stats.Revenue, 0.001)

	w = do(t, router, http.MethodGet, "/api/admin/bookings?status=Pending", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[services.BookingListResponse](t, w).Bookings)

	w = do(t, router, http.MethodGet, "/api/admin/bookings?status=Weird", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/admin/bookings?q=jane", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[services.BookingListResponse](t, w).Bookings, 1)
}

type liveFrame struct {
	Type     string               `json:"type"`
	Bookings []domain.Booking     `json:"bookings"`
	Stats    *domain.BookingStats `json:"stats"`
	Message  string               `json:"message"`
}

func TestAdminLiveFeed(t *testing.T) {
	router := newTestRouter(t, "100-M")
	server := httptest.NewServer(router)
	defer server.Close()

	token := login(t, router)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/admin/bookings/ws?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first liveFrame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "bookings", first.Type)
	assert.Empty(t, first.Bookings)
	require.NotNil(t, first.Stats)
	assert.Equal(t, 0, first.Stats.Total)

	booking := book(t, router)

	var next liveFrame
	require.NoError(t, conn.ReadJSON(&next))
	require.Len(t, next.Bookings, 1)
	assert.Equal(t, booking.ID, next.Bookings[0].ID)
	assert.Equal(t, 1, next.Stats.Pending)
}

func TestAdminLiveFeedClosesAfterLogout(t *testing.T) {
	router := newTestRouter(t, "100-M")
	server := httptest.NewServer(router)
	defer server.Close()

	token := login(t, router)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/admin/bookings/ws?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first liveFrame
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, "bookings", first.Type)

	w := do(t, router, http.MethodPost, "/api/admin/logout", nil, token)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	book(t, router)

	var next liveFrame
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "error", next.Type)
	assert.Equal(t, "admin session expired", next.Message)
	assert.Empty(t, next.Bookings)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestAdminLiveFeedRequiresSession(t *testing.T) {
	router := newTestRouter(t, "100-M")
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/admin/bookings/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
