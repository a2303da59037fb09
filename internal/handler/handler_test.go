package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftnest/storefront/internal/domain/auth"
	"github.com/giftnest/storefront/internal/domain/catalog"
	"github.com/giftnest/storefront/internal/domain/contact"
	"github.com/giftnest/storefront/internal/domain/order"
)

// --- In-memory doubles ---

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	sequence []string
}

func newStubCatalog(products ...*catalog.Product) *stubCatalog {
	s := &stubCatalog{products: make(map[string]*catalog.Product)}
	for _, p := range products {
		s.products[p.ID] = p
		s.sequence = append(s.sequence, p.ID)
	}
	return s
}

func (s *stubCatalog) List(_ context.Context) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Product, 0, len(s.sequence))
	for i := len(s.sequence) - 1; i >= 0; i-- {
		out = append(out, *s.products[s.sequence[i]])
	}
	return out, nil
}

func (s *stubCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *stubCatalog) Create(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.sequence = append(s.sequence, p.ID)
	return nil
}

// stubOrderStore implements order.Store against the stubCatalog's stock under
// a single lock, mirroring the transactional postgres store.
type stubOrderStore struct {
	mu       sync.Mutex
	catalog  *stubCatalog
	orders   map[string]*order.Order
	sequence []string
}

func newStubOrderStore(c *stubCatalog) *stubOrderStore {
	return &stubOrderStore{catalog: c, orders: make(map[string]*order.Order)}
}

func (s *stubOrderStore) Place(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.catalog.products[o.ProductID]
	if !ok {
		return catalog.ErrNotFound
	}
	if p.Stock < o.Qty {
		return order.ErrInsufficientStock
	}
	p.Stock -= o.Qty
	o.ProductName = p.Name
	stored := *o
	s.orders[o.ID] = &stored
	s.sequence = append(s.sequence, o.ID)
	return nil
}

func (s *stubOrderStore) Transition(_ context.Context, id string, target order.Status) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status == order.StatusPending && target == order.StatusRejected {
		if p, ok := s.catalog.products[o.ProductID]; ok {
			p.Stock += o.Qty
		}
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	out := *o
	return &out, nil
}

func (s *stubOrderStore) List(_ context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Order, 0, len(s.sequence))
	for i := len(s.sequence) - 1; i >= 0; i-- {
		out = append(out, *s.orders[s.sequence[i]])
	}
	return out, nil
}

func (s *stubOrderStore) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	out := *o
	return &out, nil
}

type stubContacts struct {
	mu       sync.Mutex
	messages []contact.Message
}

func (s *stubContacts) Create(_ context.Context, m *contact.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *stubContacts) List(_ context.Context) ([]contact.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contact.Message, len(s.messages))
	for i := range s.messages {
		out[len(s.messages)-1-i] = s.messages[i]
	}
	return out, nil
}

type stubAdmins struct {
	admins map[string]*auth.Admin
}

func (s *stubAdmins) FindByUsername(_ context.Context, username string) (*auth.Admin, error) {
	a, ok := s.admins[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return a, nil
}

func (s *stubAdmins) Create(_ context.Context, a *auth.Admin) error {
	s.admins[a.Username] = a
	return nil
}

func (s *stubAdmins) Count(_ context.Context) (int, error) {
	return len(s.admins), nil
}

// --- Fixture ---

type fixture struct {
	router   chi.Router
	catalog  *stubCatalog
	store    *stubOrderStore
	contacts *stubContacts
	auth     *auth.Service
}

func newFixture(t *testing.T, products ...*catalog.Product) *fixture {
	t.Helper()

	cat := newStubCatalog(products...)
	store := newStubOrderStore(cat)
	contacts := &stubContacts{}

	authSvc := auth.NewService(&stubAdmins{admins: make(map[string]*auth.Admin)}, []byte("test-secret"))
	require.NoError(t, authSvc.EnsureDefaultAdmin(context.Background(), "admin", "admin123"))

	h := NewHandler(cat, order.NewService(store), contacts, authSvc)
	r := chi.NewRouter()
	h.Routes(r)

	return &fixture{router: r, catalog: cat, store: store, contacts: contacts, auth: authSvc}
}

func (f *fixture) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := f.auth.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	return token
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func testProduct(id, name string, stock int) *catalog.Product {
	return &catalog.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString("499.00"),
		Stock:     stock,
		Tags:      []string{},
		Images:    []string{},
		CreatedAt: time.Now().UTC(),
	}
}

func orderBody(productID string, qty int) map[string]any {
	return map[string]any{
		"productId": productID,
		"buyer": map[string]string{
			"name":    "Asha Verma",
			"phone":   "+91 98765 43210",
			"address": "14 Lake View Road, Pune",
		},
		"qty":      qty,
		"subtotal": 499.00,
		"gst":      89.82,
		"delivery": 40.00,
		"total":    628.82,
	}
}

func decodeMsg(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Msg string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Msg
}

// --- Catalog routes ---

func TestListProducts(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10), testProduct("p2", "Mug", 5))

	rec := f.request(t, http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "p2", products[0].ID, "newest first")
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/api/products/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeMsg(t, rec))
}

// --- Order routes ---

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10))

	rec := f.request(t, http.MethodPost, "/api/orders", orderBody("p1", 3), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var o order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "Frame", o.ProductName)
	assert.Equal(t, 7, f.catalog.products["p1"].Stock)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 2))

	rec := f.request(t, http.MethodPost, "/api/orders", orderBody("p1", 3), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock", decodeMsg(t, rec))
	assert.Equal(t, 2, f.catalog.products["p1"].Stock)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/orders", orderBody("ghost", 1), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeMsg(t, rec))
}

func TestCreateOrder_InvalidQty(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10))

	body := orderBody("p1", 0)
	rec := f.request(t, http.MethodPost, "/api/orders", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMsg(t, rec), "qty")
}

func TestCreateOrder_BadJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Admin auth ---

func TestAdminRoutes_RequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/api/admin/orders", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token", decodeMsg(t, rec))

	rec = f.request(t, http.MethodGet, "/api/admin/orders", nil, authHeader("bogus"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeMsg(t, rec))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "admin", "password": "admin123"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "admin", "password": "nope"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeMsg(t, rec))
}

// --- Admin order workflow ---

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10))
	token := f.adminToken(t)

	rec := f.request(t, http.MethodPost, "/api/orders", orderBody("p1", 3), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var placed order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	require.Equal(t, 7, f.catalog.products["p1"].Stock)

	rec = f.request(t, http.MethodPut, "/api/admin/orders/"+placed.ID,
		map[string]string{"status": "Rejected"}, authHeader(token))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Msg   string      `json:"msg"`
		Order order.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Updated!", resp.Msg)
	assert.Equal(t, order.StatusRejected, resp.Order.Status)
	assert.Equal(t, 10, f.catalog.products["p1"].Stock, "rejection refunds stock")
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	f := newFixture(t)
	token := f.adminToken(t)

	rec := f.request(t, http.MethodPut, "/api/admin/orders/ghost",
		map[string]string{"status": "Accepted"}, authHeader(token))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decodeMsg(t, rec))
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10))
	token := f.adminToken(t)

	rec := f.request(t, http.MethodPost, "/api/orders", orderBody("p1", 1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var placed order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	rec = f.request(t, http.MethodPut, "/api/admin/orders/"+placed.ID,
		map[string]string{"status": "Lost"}, authHeader(token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10))
	token := f.adminToken(t)

	rec := f.request(t, http.MethodPost, "/api/orders", orderBody("p1", 1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var placed order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	rec = f.request(t, http.MethodGet, "/api/admin/orders/"+placed.ID, nil, authHeader(token))
	require.Equal(t, http.StatusOK, rec.Code)
	var got order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, placed.ID, got.ID)

	rec = f.request(t, http.MethodGet, "/api/admin/orders/ghost", nil, authHeader(token))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decodeMsg(t, rec))
}

func TestListOrders_NewestFirst(t *testing.T) {
	f := newFixture(t, testProduct("p1", "Frame", 10))
	token := f.adminToken(t)

	for range 2 {
		rec := f.request(t, http.MethodPost, "/api/orders", orderBody("p1", 1), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.request(t, http.MethodGet, "/api/admin/orders", nil, authHeader(token))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
}

// --- Admin product creation ---

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	token := f.adminToken(t)

	rec := f.request(t, http.MethodPost, "/api/admin/products", map[string]any{
		"name":     "Scented Candle",
		"price":    499.00,
		"stock":    60,
		"category": "candles",
		"tags":     []string{"soy"},
	}, authHeader(token))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Msg     string          `json:"msg"`
		Product catalog.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Product added!", resp.Msg)
	assert.NotEmpty(t, resp.Product.ID)
	assert.Equal(t, 60, resp.Product.Stock)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	token := f.adminToken(t)

	rec := f.request(t, http.MethodPost, "/api/admin/products", map[string]any{
		"name":  "",
		"price": 10.0,
		"stock": 1,
	}, authHeader(token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Contact ---

func TestCreateContact(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Ravi",
		"phone":   "99887 76655",
		"message": "Is gift wrapping available?",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sent!", decodeMsg(t, rec))
	require.Len(t, f.contacts.messages, 1)
}

func TestCreateContact_MissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ravi",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Required fields", decodeMsg(t, rec))
}

func TestListContact_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/api/admin/contact", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
