package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/contract"
	"storefront/internal/domain"
	"storefront/internal/repository/sqlite"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	"storefront/internal/session"
	"storefront/internal/validate"
)

const testJWTSecret = "router-test-secret"

type testEnv struct {
	handler http.Handler
	store   *sqlite.Store
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store, err := sqlite.Open(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	keys, _, err := session.DecodeKeys("", "")
	if err != nil {
		t.Fatalf("session keys: %v", err)
	}
	v := validate.New()
	srv, err := New(":0", logDiscard(), store, Deps{
		ProductSvc: productsvc.New(store.Products()),
		ReviewSvc:  reviewsvc.New(store.Reviews(), store.Products(), v),
		CartSvc:    cartsvc.New(store.Carts(), store.Products(), v, nil),
		OrderSvc:   ordersvc.New(store.Orders(), store.Carts(), ordersvc.DefaultShipping, v, nil),
		Sessions:   session.NewManager(session.Options{Keys: keys, JWTSecret: testJWTSecret}),
	})
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	return &testEnv{handler: srv.Handler(), store: store}
}

func (e *testEnv) product(t *testing.T, name, category, price string, stock int) *domain.Product {
	t.Helper()
	p, err := e.store.Products().Upsert(context.Background(), domain.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		ImageURL:    "/img/" + name + ".jpg",
		Category:    category,
		Stock:       stock,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// client replays the session cookie and optional bearer token like a browser.
type client struct {
	env     *testEnv
	cookies []*http.Cookie
	token   string
}

func (cl *client) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.env.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		cl.cookies = []*http.Cookie{set[len(set)-1]}
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	cl := &client{env: env}
	if rec := cl.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := cl.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d %s", rec.Code, rec.Body.String())
	}
}

func TestProducts_ListFiltersAndGet(t *testing.T) {
	env := newTestEnv(t)
	saree := env.product(t, "Katan Silk", domain.CategorySaree, "89.5", 4)
	env.product(t, "Bridal Red", domain.CategoryLehenga, "420", 1)
	cl := &client{env: env}

	rec := cl.do(t, http.MethodGet, "/api/products?category=Saree", "")
	var list []contract.Product
	decode(t, rec, &list)
	if rec.Code != http.StatusOK || len(list) != 1 || list[0].Price != "89.50" || list[0].Slug != "katan-silk" {
		t.Fatalf("unexpected list %d %+v", rec.Code, list)
	}

	rec = cl.do(t, http.MethodGet, "/api/products?category=Kurta", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list for unknown category, got %d %s", rec.Code, rec.Body.String())
	}

	rec = cl.do(t, http.MethodGet, "/api/products?search=BRIDAL", "")
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Category != domain.CategoryLehenga {
		t.Fatalf("unexpected search result %+v", list)
	}

	rec = cl.do(t, http.MethodGet, contract.BuildURL(contract.ProductsGet.Path, map[string]interface{}{"id": saree.ID}), "")
	var got contract.Product
	decode(t, rec, &got)
	if rec.Code != http.StatusOK || got.ID != saree.ID {
		t.Fatalf("unexpected product %d %+v", rec.Code, got)
	}

	if rec := cl.do(t, http.MethodGet, "/api/products/999", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := cl.do(t, http.MethodGet, "/api/products/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestReviews_ValidationAndCreate(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, "Organza", domain.CategorySaree, "60", 3)
	cl := &client{env: env}
	path := contract.BuildURL(contract.ReviewsCreate.Path, map[string]interface{}{"id": p.ID})

	rec := cl.do(t, http.MethodPost, path, `{"reviewerName":"Ana","rating":6,"comment":"Wow"}`)
	var errResp contract.ErrorResponse
	decode(t, rec, &errResp)
	if rec.Code != http.StatusBadRequest || errResp.Field != "rating" {
		t.Fatalf("expected 400 on rating, got %d %+v", rec.Code, errResp)
	}

	if rec := cl.do(t, http.MethodPost, "/api/products/999/reviews", `{"reviewerName":"Ana","rating":5,"comment":"Wow"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}

	rec = cl.do(t, http.MethodPost, path, `{"reviewerName":"Ana","rating":5,"comment":"Wow","productId":12345}`)
	var created contract.Review
	decode(t, rec, &created)
	if rec.Code != http.StatusCreated || created.ProductID != p.ID || created.UserID != nil {
		t.Fatalf("unexpected created review %d %+v", rec.Code, created)
	}

	rec = cl.do(t, http.MethodGet, path, "")
	var list []contract.Review
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Rating != 5 {
		t.Fatalf("unexpected reviews %+v", list)
	}
}

func TestCartAndCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, "P1", domain.CategorySaree, "100.00", 10)
	guest := &client{env: env}

	rec := guest.do(t, http.MethodPost, "/api/orders", `{"address":"House 1"}`)
	var errResp contract.ErrorResponse
	decode(t, rec, &errResp)
	if rec.Code != http.StatusBadRequest || errResp.Message != "Cart is empty" {
		t.Fatalf("expected empty cart error, got %d %+v", rec.Code, errResp)
	}

	for _, body := range []string{`{"productId":1,"quantity":2}`, `{"productId":1,"quantity":3}`} {
		if rec := guest.do(t, http.MethodPost, "/api/cart", body); rec.Code != http.StatusCreated {
			t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
		}
	}
	rec = guest.do(t, http.MethodGet, "/api/cart", "")
	var cart []contract.CartItem
	decode(t, rec, &cart)
	if len(cart) != 1 || cart[0].Quantity != 5 || cart[0].Product == nil || cart[0].Product.ID != p.ID {
		t.Fatalf("expected merged row, got %+v", cart)
	}

	if rec := guest.do(t, http.MethodPost, "/api/cart", `{"productId":999}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown product, got %d", rec.Code)
	}
	rec = guest.do(t, contract.CartUpdate.Method, "/api/cart/"+itoa(cart[0].ID), `{"quantity":0}`)
	var zeroErr contract.ErrorResponse
	decode(t, rec, &zeroErr)
	if rec.Code != http.StatusBadRequest || zeroErr.Field != "quantity" || zeroErr.Message != "Quantity must be at least 1" {
		t.Fatalf("expected 400 range error for zero quantity, got %d %+v", rec.Code, zeroErr)
	}
	rec = guest.do(t, http.MethodPatch, "/api/cart/"+itoa(cart[0].ID), `{"quantity":5}`)
	var updated contract.CartItem
	decode(t, rec, &updated)
	if rec.Code != http.StatusOK || updated.Quantity != 5 {
		t.Fatalf("expected PATCH to set quantity, got %d %+v", rec.Code, updated)
	}

	stranger := &client{env: env}
	if rec := stranger.do(t, http.MethodPatch, "/api/cart/"+itoa(cart[0].ID), `{"quantity":1}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign item, got %d", rec.Code)
	}
	if rec := stranger.do(t, http.MethodDelete, "/api/cart/"+itoa(cart[0].ID), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for foreign delete, got %d", rec.Code)
	}

	rec = guest.do(t, http.MethodPost, "/api/orders", `{"address":"House 1","guestName":"Rina","guestEmail":"rina@example.com","totalAmount":1}`,
		contract.IdempotencyKeyHeader, "checkout-1")
	var order contract.Order
	decode(t, rec, &order)
	if rec.Code != http.StatusCreated || order.TotalAmount != "500.00" || order.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order %d %+v", rec.Code, order)
	}

	rec = guest.do(t, http.MethodPost, "/api/orders", `{"address":"House 1"}`, contract.IdempotencyKeyHeader, "checkout-1")
	var replay contract.Order
	decode(t, rec, &replay)
	if rec.Code != http.StatusCreated || replay.ID != order.ID {
		t.Fatalf("expected idempotent replay, got %d %+v", rec.Code, replay)
	}

	rec = guest.do(t, http.MethodGet, "/api/cart", "")
	decode(t, rec, &cart)
	if len(cart) != 0 {
		t.Fatalf("expected cart cleared, got %+v", cart)
	}

	rec = guest.do(t, http.MethodGet, "/api/orders/"+itoa(order.ID), "")
	var fetched contract.Order
	decode(t, rec, &fetched)
	if rec.Code != http.StatusOK || len(fetched.Items) != 1 || fetched.Items[0].Quantity != 5 || fetched.Items[0].Price != "100.00" {
		t.Fatalf("unexpected fetched order %d %+v", rec.Code, fetched)
	}
	if rec := stranger.do(t, http.MethodGet, "/api/orders/"+itoa(order.ID), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d", rec.Code)
	}

	if rec := guest.do(t, http.MethodPost, "/api/orders", `{"guestName":"Rina"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without address, got %d", rec.Code)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	env.product(t, "Scarce", domain.CategoryPartyDress, "70", 1)
	cl := &client{env: env}

	if rec := cl.do(t, http.MethodPost, "/api/cart", `{"productId":1,"quantity":2}`); rec.Code != http.StatusCreated {
		t.Fatalf("add: %d", rec.Code)
	}
	rec := cl.do(t, http.MethodPost, "/api/orders", `{"address":"x"}`)
	var errResp contract.ErrorResponse
	decode(t, rec, &errResp)
	if rec.Code != http.StatusBadRequest || !strings.Contains(errResp.Message, "Scarce") {
		t.Fatalf("expected stock error naming product, got %d %+v", rec.Code, errResp)
	}
}

func TestAuthUserAndGuestCartAdoption(t *testing.T) {
	env := newTestEnv(t)
	env.product(t, "Adopted", domain.CategoryThreePiece, "30", 5)
	cl := &client{env: env}

	if rec := cl.do(t, http.MethodGet, "/api/auth/user", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous user, got %d", rec.Code)
	}
	if rec := cl.do(t, http.MethodPost, "/api/cart", `{"productId":1,"quantity":2}`); rec.Code != http.StatusCreated {
		t.Fatalf("guest add: %d", rec.Code)
	}

	token, err := session.IssueToken([]byte(testJWTSecret), "user-42", "u42@example.com", "Nadia", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	cl.token = token

	rec := cl.do(t, http.MethodGet, "/api/auth/user", "")
	var me contract.AuthUser
	decode(t, rec, &me)
	if rec.Code != http.StatusOK || me.ID != "user-42" || me.Name != "Nadia" {
		t.Fatalf("unexpected auth user %d %+v", rec.Code, me)
	}

	rec = cl.do(t, http.MethodGet, "/api/cart", "")
	var cart []contract.CartItem
	decode(t, rec, &cart)
	if len(cart) != 1 || cart[0].Quantity != 2 || cart[0].UserID == nil || *cart[0].UserID != "user-42" {
		t.Fatalf("expected adopted cart, got %+v", cart)
	}

	cl.token = "not-a-jwt"
	if rec := cl.do(t, http.MethodGet, "/api/cart", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestBuildRouterRequiresServices(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
