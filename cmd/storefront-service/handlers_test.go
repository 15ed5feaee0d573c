package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cat "github.com/craftwood/storefront/internal/catalog"
	ord "github.com/craftwood/storefront/internal/order"
)

//
// ---------- STUBS & FAKES ----------
//

// stubCatalog implements cat.Repository in memory.
type stubCatalog struct {
	items map[string]*cat.Product
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{items: make(map[string]*cat.Product)}
}

func (s *stubCatalog) Create(_ context.Context, p *cat.Product) error {
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubCatalog) GetByID(_ context.Context, id string) (*cat.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, cat.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubCatalog) List(context.Context) ([]cat.Product, error) {
	out := make([]cat.Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubCatalog) Update(_ context.Context, p *cat.Product) error {
	if _, ok := s.items[p.ID]; !ok {
		return cat.ErrNotFound
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubCatalog) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

// stubMedia implements media.Store in memory.
type stubMedia struct {
	saved   []string
	removed []string
}

func (s *stubMedia) Save(filename string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	ref := "/uploads/" + fmt.Sprintf("%d-", len(s.saved)) + filename
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *stubMedia) Remove(ref string) error {
	s.removed = append(s.removed, ref)
	return nil
}

// memOrderStore implements ord.Store in memory, with real commit/rollback
// bookkeeping so the handlers run against the actual service.
type memOrderStore struct {
	orders map[string]ord.Order
	items  map[string][]ord.Item
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[string]ord.Order{}, items: map[string][]ord.Item{}}
}

func (m *memOrderStore) Begin(context.Context) (ord.Tx, error) {
	return &memOrderTx{store: m, items: map[string][]ord.Item{}}, nil
}

func (m *memOrderStore) GetOrder(_ context.Context, id string) (*ord.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ord.ErrNotFound
	}
	return &o, nil
}

func (m *memOrderStore) ListItems(_ context.Context, orderID string) ([]ord.Item, error) {
	return append([]ord.Item(nil), m.items[orderID]...), nil
}

func (m *memOrderStore) ListOrders(context.Context) ([]ord.Order, error) {
	out := make([]ord.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrderStore) UpdateStatus(_ context.Context, id, status string) (int64, error) {
	o, ok := m.orders[id]
	if !ok {
		return 0, nil
	}
	o.Status = status
	m.orders[id] = o
	return 1, nil
}

type memOrderTx struct {
	store         *memOrderStore
	orders        []ord.Order
	items         map[string][]ord.Item
	deletedOrders []string
	deletedItems  []string
	done          bool
}

func (t *memOrderTx) InsertOrder(_ context.Context, o *ord.Order) error {
	t.orders = append(t.orders, *o)
	return nil
}

func (t *memOrderTx) InsertItem(_ context.Context, it *ord.Item) error {
	t.items[it.OrderID] = append(t.items[it.OrderID], *it)
	return nil
}

func (t *memOrderTx) DeleteItems(_ context.Context, orderID string) (int64, error) {
	t.deletedItems = append(t.deletedItems, orderID)
	return int64(len(t.store.items[orderID])), nil
}

func (t *memOrderTx) DeleteOrder(_ context.Context, id string) (int64, error) {
	if _, ok := t.store.orders[id]; !ok {
		return 0, nil
	}
	t.deletedOrders = append(t.deletedOrders, id)
	return 1, nil
}

func (t *memOrderTx) Commit(context.Context) error {
	t.done = true
	for _, id := range t.deletedItems {
		delete(t.store.items, id)
	}
	for _, id := range t.deletedOrders {
		delete(t.store.orders, id)
	}
	for _, o := range t.orders {
		t.store.orders[o.ID] = o
	}
	for id, its := range t.items {
		t.store.items[id] = append(t.store.items[id], its...)
	}
	return nil
}

func (t *memOrderTx) Rollback(context.Context) error { return nil }

func newTestEnv() (*gin.Engine, *stubCatalog, *stubMedia, *memOrderStore) {
	gin.SetMode(gin.TestMode)
	repo := newStubCatalog()
	media := &stubMedia{}
	store := newMemOrderStore()
	r := gin.New()

	r.POST("/products", createProductHandler(repo, media))
	r.GET("/products", listProductsHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	r.PUT("/products/:id", updateProductHandler(repo, media))
	r.DELETE("/products/:id", deleteProductHandler(repo, media))

	svc := ord.NewService(store)
	r.POST("/orders", placeOrderHandler(svc))
	r.GET("/orders", listOrdersHandler(svc))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(svc))
	r.DELETE("/orders/:id", deleteOrderHandler(svc))

	return r, repo, media, store
}

func multipartProduct(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("newImages", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

//
// ---------- TESTS ----------
//

func TestCreateProduct_HappyPath(t *testing.T) {
	r, repo, media, _ := newTestEnv()

	body, ctype := multipartProduct(t, map[string]string{
		"zhTitle": "胡桃木茶盤",
		"enTitle": "Walnut tea tray",
		"zhPrice": "NT$1,200",
		"zhDesc":  "手工胡桃木",
		"link":    "https://example.com/p/1",
	}, map[string]string{"tray.jpg": "fakejpegbytes"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", ctype)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var p cat.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if p.Category != cat.DefaultCategory {
		t.Fatalf("category=%q, expected default %q", p.Category, cat.DefaultCategory)
	}
	if len(p.Images) != 1 || p.Image != p.Images[0] {
		t.Fatalf("main image not first of images: %+v", p)
	}
	if len(media.saved) != 1 {
		t.Fatalf("expected 1 stored upload, got %d", len(media.saved))
	}
	if _, ok := repo.items[p.ID]; !ok {
		t.Fatalf("product not persisted")
	}
}

func TestCreateProduct_MissingRequired(t *testing.T) {
	r, repo, _, _ := newTestEnv()

	body, ctype := multipartProduct(t, map[string]string{"zhTitle": "孤兒欄位"}, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", ctype)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	if len(repo.items) != 0 {
		t.Fatalf("nothing should have been persisted")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	r, _, _, _ := newTestEnv()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestDeleteProduct_ReleasesImages(t *testing.T) {
	r, repo, media, _ := newTestEnv()

	id := uuid.NewString()
	repo.items[id] = &cat.Product{
		ID:     id,
		Images: []string{"/uploads/1-a.jpg", "/uploads/2-b.jpg"},
		Image:  "/uploads/1-a.jpg",
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/products/"+id, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if _, ok := repo.items[id]; ok {
		t.Fatalf("product row still present")
	}
	if len(media.removed) != 2 {
		t.Fatalf("expected 2 released images, got %v", media.removed)
	}
}

func TestUpdateProduct_KeepsBlankFields(t *testing.T) {
	r, repo, _, _ := newTestEnv()

	id := uuid.NewString()
	repo.items[id] = &cat.Product{
		ID:      id,
		ZhTitle: "舊名",
		ZhPrice: "NT$500",
		Images:  []string{"/uploads/1-a.jpg"},
		Image:   "/uploads/1-a.jpg",
	}

	body, ctype := multipartProduct(t, map[string]string{
		"zhTitle":        "新名",
		"existingImages": `["/uploads/1-a.jpg","../etc/passwd"]`,
	}, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/"+id, body)
	req.Header.Set("Content-Type", ctype)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := repo.items[id]
	if got.ZhTitle != "新名" {
		t.Fatalf("zhTitle=%q, expected updated value", got.ZhTitle)
	}
	if got.ZhPrice != "NT$500" {
		t.Fatalf("zhPrice=%q, blank field must keep current value", got.ZhPrice)
	}
	if len(got.Images) != 1 || got.Images[0] != "/uploads/1-a.jpg" {
		t.Fatalf("images=%v, non-/uploads/ refs must be dropped", got.Images)
	}
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	r, _, _, _ := newTestEnv()

	body := `{"name":"Mei Lin","address":"Taipei","items":[
	  {"product_id":"p-1","quantity":2,"price":"90.00"},
	  {"product_id":"p-2","quantity":1}
	]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.OrderID == "" {
		t.Fatalf("bad create response: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/orders/"+created.OrderID, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var view struct {
		ord.Order
		Items []ord.Item `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if view.Status != ord.StatusPending {
		t.Fatalf("status=%q, expected pending", view.Status)
	}
	if len(view.Items) != 2 {
		t.Fatalf("items len=%d, expected 2", len(view.Items))
	}
	if view.Items[0].Price != "90" || view.Items[1].Price != "0" {
		t.Fatalf("price snapshots wrong: %+v", view.Items)
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	r, _, _, store := newTestEnv()

	body := `{"name":"Mei Lin","address":"Taipei","items":[]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	if len(store.orders) != 0 {
		t.Fatalf("no order should have been persisted")
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	r, _, _, store := newTestEnv()

	id := uuid.NewString()
	store.orders[id] = ord.Order{ID: id, Status: ord.StatusPending}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/orders/"+id+"/status",
		bytes.NewBufferString(`{"status":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if store.orders[id].Status != ord.StatusShipped {
		t.Fatalf("status=%q, expected shipped", store.orders[id].Status)
	}

	// unknown order id
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/status",
		bytes.NewBufferString(`{"status":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (expected 404)", w.Code)
	}

	// missing status
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/orders/"+id+"/status",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d (expected 400)", w.Code)
	}
}

func TestDeleteOrder(t *testing.T) {
	r, _, _, store := newTestEnv()

	id := uuid.NewString()
	store.orders[id] = ord.Order{ID: id, Status: ord.StatusPending}
	store.items[id] = []ord.Item{{ID: uuid.NewString(), OrderID: id, ProductID: "p-1", Quantity: 1, Price: "0"}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/orders/"+id, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if _, ok := store.orders[id]; ok {
		t.Fatalf("order still present")
	}
	if len(store.items[id]) != 0 {
		t.Fatalf("order items still present")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/orders/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (expected 404)", w.Code)
	}
}

func TestListOrders_Empty(t *testing.T) {
	r, _, _, _ := newTestEnv()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if body := bytes.TrimSpace(w.Body.Bytes()); string(body) != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}
