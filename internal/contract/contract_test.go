package contract

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

func TestRoutesMethodsAndPaths(t *testing.T) {
	want := map[string][2]string{
		"products.list":  {http.MethodGet, "/api/products"},
		"products.get":   {http.MethodGet, "/api/products/:id"},
		"reviews.list":   {http.MethodGet, "/api/products/:id/reviews"},
		"reviews.create": {http.MethodPost, "/api/products/:id/reviews"},
		"cart.list":      {http.MethodGet, "/api/cart"},
		"cart.add":       {http.MethodPost, "/api/cart"},
		"cart.update":    {http.MethodPatch, "/api/cart/:id"},
		"cart.remove":    {http.MethodDelete, "/api/cart/:id"},
		"orders.create":  {http.MethodPost, "/api/orders"},
		"orders.get":     {http.MethodGet, "/api/orders/:id"},
		"auth.user":      {http.MethodGet, "/api/auth/user"},
	}
	if len(Routes) != len(want) {
		t.Fatalf("expected %d routes, got %d", len(want), len(Routes))
	}
	for _, r := range Routes {
		w, ok := want[r.Name]
		if !ok {
			t.Fatalf("unexpected route %s", r.Name)
		}
		if r.Method != w[0] || r.Path != w[1] {
			t.Errorf("%s = %s %s, want %s %s", r.Name, r.Method, r.Path, w[0], w[1])
		}
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		path   string
		params map[string]interface{}
		want   string
	}{
		{ProductsGet.Path, map[string]interface{}{"id": 42}, "/api/products/42"},
		{ReviewsList.Path, map[string]interface{}{"id": int64(7)}, "/api/products/7/reviews"},
		{CartUpdate.Path, nil, "/api/cart/:id"},
		{ProductsList.Path, map[string]interface{}{"id": 1}, "/api/products"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.path, tc.params); got != tc.want {
			t.Errorf("BuildURL(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestFromProduct_MoneyAndSlug(t *testing.T) {
	original := decimal.RequireFromString("150")
	p := FromProduct(domain.Product{
		ID:            3,
		Name:          "Banarasi Silk Saree",
		Price:         decimal.RequireFromString("89.5"),
		OriginalPrice: &original,
		Category:      domain.CategorySaree,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if p.Price != "89.50" || p.OriginalPrice == nil || *p.OriginalPrice != "150.00" {
		t.Fatalf("unexpected prices %q %v", p.Price, p.OriginalPrice)
	}
	if p.Slug != "banarasi-silk-saree" {
		t.Fatalf("unexpected slug %q", p.Slug)
	}
}

func TestCreateOrderInput_AcceptsNumericOrStringTotal(t *testing.T) {
	for _, body := range []string{`{"address":"a","totalAmount":215}`, `{"address":"a","totalAmount":"215.00"}`} {
		var in CreateOrderInput
		if err := json.Unmarshal([]byte(body), &in); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if in.TotalAmount == nil {
			t.Fatalf("expected total for %s", body)
		}
		if _, err := decimal.NewFromString(in.TotalAmount.String()); err != nil {
			t.Fatalf("parse total %q: %v", in.TotalAmount.String(), err)
		}
	}
}

func TestAddCartItemInput_DefaultQuantity(t *testing.T) {
	if got := (AddCartItemInput{ProductID: 1}).Qty(); got != 1 {
		t.Fatalf("expected default 1, got %d", got)
	}
	q := 4
	if got := (AddCartItemInput{ProductID: 1, Quantity: &q}).Qty(); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}
