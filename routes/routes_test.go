package routes_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"storefront/controllers"
	"storefront/database"
	"storefront/internal/testhelpers"
	"storefront/repository"
	"storefront/routes"
	"storefront/services"
	"storefront/utils"
)

type server struct {
	engine    *gin.Engine
	uploadDir string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewDB(t)
	require.NoError(t, database.Seed(db, "admin123", zap.NewNop()))

	uploadDir := t.TempDir()
	tokens := utils.NewJWTManager("test-secret", 7*24*time.Hour, 24*time.Hour)
	customers := repository.NewCustomerRepository(db)
	orders := services.NewOrderService(repository.NewOrderRepository(db), customers, services.OrderOptions{})
	accounts := services.NewAccountService(customers, repository.NewAdminRepository(db), tokens, zap.NewNop())
	catalog := services.NewCatalogService(repository.NewProductRepository(db), uploadDir, zap.NewNop())

	return &server{
		engine: routes.Setup(routes.Deps{
			Orders:    controllers.NewOrderController(orders),
			Customers: controllers.NewCustomerController(accounts),
			Admins:    controllers.NewAdminController(accounts),
			Products:  controllers.NewProductController(catalog, uploadDir, 5<<20),
			Tokens:    tokens,
			Logger:    zap.NewNop(),
			UploadDir: uploadDir,
		}),
		uploadDir: uploadDir,
	}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *server) registerCustomer(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/customers/register", "", map[string]any{
		"name": "Ana", "email": email, "phone": "555-0100", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["token"].(string)
}

func (s *server) adminToken(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/admin/login", "", map[string]any{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["token"].(string)
}

var checkoutBody = map[string]any{
	"total_amount": 9.90,
	"items": []map[string]any{
		{"product_id": 1, "quantity": 2, "price": 2.50},
		{"product_id": 5, "quantity": 1, "price": 4.90},
	},
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestOrders_Unauthenticated(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/customers/orders"},
		{http.MethodPut, "/api/orders/1/status"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = s.do(t, tt.method, tt.path, "not-a-jwt", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid token.", decode[map[string]any](t, w)["error"])
		})
	}
}

func TestOrders_CheckoutAndAdminList(t *testing.T) {
	s := newServer(t)
	customer := s.registerCustomer(t, "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/orders", customer, checkoutBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "ORD-0001", created["order_number"])
	assert.Equal(t, "Order created successfully", created["message"])

	// customer tokens do not open the admin listing
	w = s.do(t, http.MethodGet, "/api/orders", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.adminToken(t)
	w = s.do(t, http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Coca Cola 600ml (x2),Galletas Oreo (x1)", list[0]["items"])
	assert.Equal(t, 9.9, list[0]["total_amount"])
	assert.Equal(t, "pending", list[0]["status"])
	assert.Equal(t, "Ana", list[0]["customer_name"])

	w = s.do(t, http.MethodGet, "/api/customers/orders", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	other := s.registerCustomer(t, "bob@example.com")
	w = s.do(t, http.MethodGet, "/api/customers/orders", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrders_CheckoutRejectsBadInput(t *testing.T) {
	s := newServer(t)
	customer := s.registerCustomer(t, "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/orders", customer, map[string]any{"total_amount": 1, "items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders", customer, map[string]any{
		"total_amount": 100,
		"items":        []map[string]any{{"product_id": 1, "quantity": 1, "price": 2.5}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := s.adminToken(t)
	w = s.do(t, http.MethodGet, "/api/orders", admin, nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrders_UpdateStatus(t *testing.T) {
	s := newServer(t)
	customer := s.registerCustomer(t, "ana@example.com")
	admin := s.adminToken(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/orders", customer, checkoutBody).Code)

	w := s.do(t, http.MethodPut, "/api/orders/1/status", admin, map[string]any{"status": " preparing "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "preparing", body["status"])
	assert.Equal(t, float64(1), body["id"])

	w = s.do(t, http.MethodGet, "/api/orders/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	order := decode[map[string]any](t, w)
	assert.Equal(t, "preparing", order["status"])
	assert.Equal(t, "ready", order["next_status"])

	w = s.do(t, http.MethodPut, "/api/orders/1/status", admin, map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/api/orders/1/status", admin, map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/orders/999/status", admin, map[string]any{"status": "preparing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/orders/abc/status", admin, map[string]any{"status": "preparing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/orders/1/status", customer, map[string]any{"status": "ready"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCustomers_Accounts(t *testing.T) {
	s := newServer(t)
	token := s.registerCustomer(t, "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/customers/register", "", map[string]any{
		"name": "Ana", "email": "ana@example.com", "phone": "1", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/customers/login", "", map[string]any{"email": "ana@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/customers/profile", token, map[string]any{"name": "Ana M", "phone": "555-0199"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/customers/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[map[string]any](t, w)
	assert.Equal(t, "Ana M", profile["name"])
	assert.NotContains(t, profile, "password")
}

func TestProducts_AdminWrites(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken(t)

	w := s.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 28)

	w = s.do(t, http.MethodPost, "/api/products", "", map[string]any{"name": "Chicle", "price": 0.5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/products", admin, map[string]any{"name": "Chicle", "price": 0.5, "stock": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]any](t, w)["id"]
	assert.Equal(t, float64(29), id)

	w = s.do(t, http.MethodPut, "/api/products/29", admin, map[string]any{"name": "Chicle menta", "price": 0.6})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/products/29", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/products/29", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProducts_UploadImage(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken(t)

	upload := func(contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="photo.PNG"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/products/upload-image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	w := upload("text/plain")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload("image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	filename := body["filename"].(string)
	assert.Regexp(t, `^product-\d+-\d+\.png$`, filename)
	assert.Equal(t, "/uploads/"+filename, body["imageUrl"])

	_, err := os.Stat(filepath.Join(s.uploadDir, filename))
	assert.NoError(t, err)
}
