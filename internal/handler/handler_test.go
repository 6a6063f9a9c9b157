package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"warehouse/internal/domain/model"
	"warehouse/internal/handler"
	repo "warehouse/internal/repository"
	"warehouse/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const ownerID = "44444444-4444-4444-4444-444444444444"

// =====================
// In-memory store
// =====================

// memStore backs the repositories for handler tests. WithinTx snapshots the
// maps and restores them when the callback fails, mirroring a rollback.
type memStore struct {
	mu       sync.Mutex
	products map[string]model.Product // by product id
	stocks   map[string]model.Stock   // by product id
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]model.Product),
		stocks:   make(map[string]model.Stock),
	}
}

func (m *memStore) Products() repo.ProductRepository { return &memProductRepo{store: m} }
func (m *memStore) Stocks() repo.StockRepository     { return &memStockRepo{store: m} }

func (m *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.mu.Lock()
	products := make(map[string]model.Product, len(m.products))
	for k, v := range m.products {
		products[k] = v
	}
	stocks := make(map[string]model.Stock, len(m.stocks))
	for k, v := range m.stocks {
		stocks[k] = v
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.products = products
		m.stocks = stocks
		m.mu.Unlock()
		return err
	}
	return nil
}

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) FindByID(ctx context.Context, ownerID, productID string) (model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok || p.OwnerID != ownerID {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var products []model.Product
	for _, p := range r.store.products {
		if p.OwnerID == ownerID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *memProductRepo) Update(ctx context.Context, p model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.products[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return repo.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	r.store.products[p.ID] = cur
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, ownerID, productID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok || p.OwnerID != ownerID {
		return repo.ErrNotFound
	}
	delete(r.store.products, productID)
	return nil
}

type memStockRepo struct{ store *memStore }

func (r *memStockRepo) Create(ctx context.Context, s model.Stock) (model.Stock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stocks[s.ProductID] = s
	return s, nil
}

func (r *memStockRepo) FindByOwnerAndProduct(ctx context.Context, ownerID, productID string) (model.Stock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.stocks[productID]
	if !ok || s.OwnerID != ownerID {
		return model.Stock{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *memStockRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Stock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var stocks []model.Stock
	for _, s := range r.store.stocks {
		if s.OwnerID == ownerID {
			stocks = append(stocks, s)
		}
	}
	return stocks, nil
}

func (r *memStockRepo) SetQuantity(ctx context.Context, s model.Stock, quantity int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.stocks[s.ProductID]
	if !ok || cur.ID != s.ID || cur.OwnerID != s.OwnerID || cur.Quantity != s.Quantity {
		return repo.ErrNotFound
	}
	cur.Quantity = quantity
	r.store.stocks[s.ProductID] = cur
	return nil
}

func (r *memStockRepo) DecreaseQuantityIfEnough(ctx context.Context, ownerID, productID string, qty int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.stocks[productID]
	if !ok || s.OwnerID != ownerID || s.Quantity < qty {
		return false, nil
	}
	s.Quantity -= qty
	r.store.stocks[productID] = s
	return true, nil
}

func (r *memStockRepo) Delete(ctx context.Context, ownerID, productID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.stocks[productID]
	if !ok || s.OwnerID != ownerID {
		return repo.ErrNotFound
	}
	delete(r.store.stocks, productID)
	return nil
}

// =====================
// Helpers
// =====================

func newTestServer() *echo.Echo {
	store := newMemStore()
	uc := usecase.NewInventoryUsecase(store.Products(), store.Stocks(), store, zerolog.Nop())

	e := echo.New()
	handler.NewProductHandler(uc).RegisterRoutes(e)
	handler.NewOrderHandler(uc).RegisterRoutes(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeProduct(t *testing.T, body []byte) handler.ProductResponse {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, body)
	}
	var p handler.ProductResponse
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode product: %v body=%s", err, body)
	}
	return p
}

func createProduct(t *testing.T, e *echo.Echo, name string, quantity int64) handler.ProductResponse {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"description":"test product","quantity":%d}`, name, quantity)
	code, resp := doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/products", body)
	if code != http.StatusOK {
		t.Fatalf("create product: status %d body=%s", code, resp)
	}
	return decodeProduct(t, resp)
}

func getQuantity(t *testing.T, e *echo.Echo, productID string) int64 {
	t.Helper()
	code, resp := doJSON(t, e, http.MethodGet, "/v1/"+ownerID+"/products/"+productID, "")
	if code != http.StatusOK {
		t.Fatalf("get product: status %d body=%s", code, resp)
	}
	return decodeProduct(t, resp).Quantity
}

// =====================
// Products
// =====================

func TestCreateAndGetProduct_Roundtrip(t *testing.T) {
	e := newTestServer()

	created := createProduct(t, e, "Monitor", 10)
	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^[A-Za-z0-9]{4}(-[A-Za-z0-9]{4}){3}$`, created.SKU)
	assert.Equal(t, int64(10), created.Quantity)

	code, resp := doJSON(t, e, http.MethodGet, "/v1/"+ownerID+"/products/"+created.ID, "")
	assert.Equal(t, http.StatusOK, code)

	got := decodeProduct(t, resp)
	assert.Equal(t, "Monitor", got.Name)
	assert.Equal(t, "test product", got.Description)
	assert.Equal(t, created.SKU, got.SKU)
	assert.Equal(t, int64(10), got.Quantity)
}

func TestCreateProduct_InvalidClientID(t *testing.T) {
	e := newTestServer()

	code, _ := doJSON(t, e, http.MethodPost, "/v1/not-a-uuid/products", `{"name":"Monitor","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateProduct_ZeroQuantity(t *testing.T) {
	e := newTestServer()

	code, _ := doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/products", `{"name":"Monitor","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetProduct_NotFound(t *testing.T) {
	e := newTestServer()

	code, _ := doJSON(t, e, http.MethodGet, "/v1/"+ownerID+"/products/55555555-5555-5555-5555-555555555555", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetProduct_OtherOwnerIsNotFound(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	other := "66666666-6666-6666-6666-666666666666"
	code, _ := doJSON(t, e, http.MethodGet, "/v1/"+other+"/products/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdateProduct(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	code, resp := doJSON(t, e, http.MethodPut, "/v1/"+ownerID+"/products/"+created.ID,
		`{"name":"Monitor XL","description":"bigger"}`)
	assert.Equal(t, http.StatusOK, code)

	got := decodeProduct(t, resp)
	assert.Equal(t, "Monitor XL", got.Name)
	assert.Equal(t, "bigger", got.Description)
	assert.Equal(t, created.SKU, got.SKU)
}

func TestDeleteProduct(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	code, _ := doJSON(t, e, http.MethodDelete, "/v1/"+ownerID+"/products/"+created.ID, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, e, http.MethodGet, "/v1/"+ownerID+"/products/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
}

// =====================
// Quantity
// =====================

func TestSetQuantity_DecreaseRejected(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	code, _ := doJSON(t, e, http.MethodPut, "/v1/"+ownerID+"/products/"+created.ID+"/quantity",
		`{"quantity":5}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(10), getQuantity(t, e, created.ID))
}

func TestSetQuantity_IdempotentAtCurrentValue(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	for i := 0; i < 2; i++ {
		code, _ := doJSON(t, e, http.MethodPut, "/v1/"+ownerID+"/products/"+created.ID+"/quantity",
			`{"quantity":10}`)
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, int64(10), getQuantity(t, e, created.ID))
}

func TestSetQuantity_Increase(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	code, _ := doJSON(t, e, http.MethodPut, "/v1/"+ownerID+"/products/"+created.ID+"/quantity",
		`{"quantity":25}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(25), getQuantity(t, e, created.ID))
}

func TestCheckAvailability_DoesNotMutate(t *testing.T) {
	e := newTestServer()
	created := createProduct(t, e, "Monitor", 10)

	code, _ := doJSON(t, e, http.MethodGet, "/v1/"+ownerID+"/products/"+created.ID+"/availability?number=10", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, e, http.MethodGet, "/v1/"+ownerID+"/products/"+created.ID+"/availability?number=11", "")
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, int64(10), getQuantity(t, e, created.ID))
}

// =====================
// Orders
// =====================

func orderBody(lines ...[2]interface{}) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf(`{"product_id":%q,"quantity":%d}`, l[0], l[1]))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestProcessOrders_WorkedExample(t *testing.T) {
	e := newTestServer()

	p1 := createProduct(t, e, "P1", 10)
	p2 := createProduct(t, e, "P2", 2)

	// P2 insufficient: whole batch fails, nothing mutates
	code, _ := doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/orders",
		orderBody([2]interface{}{p1.ID, 5}, [2]interface{}{p2.ID, 5}))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(10), getQuantity(t, e, p1.ID))
	assert.Equal(t, int64(2), getQuantity(t, e, p2.ID))

	// both lines fit: batch succeeds
	code, _ = doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/orders",
		orderBody([2]interface{}{p1.ID, 5}, [2]interface{}{p2.ID, 2}))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(5), getQuantity(t, e, p1.ID))
	assert.Equal(t, int64(0), getQuantity(t, e, p2.ID))

	// same batch again: P2 is empty now, quantities stay put
	code, _ = doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/orders",
		orderBody([2]interface{}{p1.ID, 5}, [2]interface{}{p2.ID, 2}))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(5), getQuantity(t, e, p1.ID))
	assert.Equal(t, int64(0), getQuantity(t, e, p2.ID))
}

func TestProcessOrders_DuplicateLine(t *testing.T) {
	e := newTestServer()
	p1 := createProduct(t, e, "P1", 10)

	code, _ := doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/orders",
		orderBody([2]interface{}{p1.ID, 1}, [2]interface{}{p1.ID, 2}))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int64(10), getQuantity(t, e, p1.ID))
}

func TestProcessOrders_EmptyBatch(t *testing.T) {
	e := newTestServer()

	code, _ := doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/orders", `[]`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProcessOrders_UnknownProduct(t *testing.T) {
	e := newTestServer()
	p1 := createProduct(t, e, "P1", 10)

	code, _ := doJSON(t, e, http.MethodPost, "/v1/"+ownerID+"/orders",
		orderBody([2]interface{}{p1.ID, 1}, [2]interface{}{"77777777-7777-7777-7777-777777777777", 1}))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, int64(10), getQuantity(t, e, p1.ID))
}
