// Package contract is the shared HTTP surface of the storefront: the route
// table, request inputs and response shapes used by both server and client.
package contract

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Route struct {
	Name   string
	Method string
	Path   string
}

var (
	ProductsList  = Route{Name: "products.list", Method: http.MethodGet, Path: "/api/products"}
	ProductsGet   = Route{Name: "products.get", Method: http.MethodGet, Path: "/api/products/:id"}
	ReviewsList   = Route{Name: "reviews.list", Method: http.MethodGet, Path: "/api/products/:id/reviews"}
	ReviewsCreate = Route{Name: "reviews.create", Method: http.MethodPost, Path: "/api/products/:id/reviews"}
	CartList      = Route{Name: "cart.list", Method: http.MethodGet, Path: "/api/cart"}
	CartAdd       = Route{Name: "cart.add", Method: http.MethodPost, Path: "/api/cart"}
	CartUpdate    = Route{Name: "cart.update", Method: http.MethodPatch, Path: "/api/cart/:id"}
	CartRemove    = Route{Name: "cart.remove", Method: http.MethodDelete, Path: "/api/cart/:id"}
	OrdersCreate  = Route{Name: "orders.create", Method: http.MethodPost, Path: "/api/orders"}
	OrdersGet     = Route{Name: "orders.get", Method: http.MethodGet, Path: "/api/orders/:id"}
	AuthUserGet   = Route{Name: "auth.user", Method: http.MethodGet, Path: "/api/auth/user"}
)

// Routes lists every endpoint in registration order.
var Routes = []Route{
	ProductsList, ProductsGet, ReviewsList, ReviewsCreate,
	CartList, CartAdd, CartUpdate, CartRemove,
	OrdersCreate, OrdersGet, AuthUserGet,
}

// IdempotencyKeyHeader lets a client retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// BuildURL substitutes each :name segment of path with params[name].
// Segments without a matching param are left untouched.
func BuildURL(path string, params map[string]interface{}) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if v, ok := params[seg[1:]]; ok {
			segments[i] = url.PathEscape(fmt.Sprint(v))
		}
	}
	return strings.Join(segments, "/")
}
