// Package client is a typed HTTP client for the storefront API. It keeps the
// session cookie between calls and caches reads until a mutation invalidates them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/contract"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d: %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string

	mu    sync.Mutex
	cache map[string][]byte
}

type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying client. Its Jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base url %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   map[string][]byte{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// ProductQuery filters ListProducts.
type ProductQuery struct {
	Category    string
	Search      string
	NewArrivals bool
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.NewArrivals {
		v.Set("newArrivals", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]contract.Product, error) {
	var out []contract.Product
	err := c.cachedGet(ctx, contract.ProductsList.Path+q.encode(), &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*contract.Product, error) {
	var out contract.Product
	if err := c.cachedGet(ctx, idPath(contract.ProductsGet, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReviews(ctx context.Context, productID int64) ([]contract.Review, error) {
	var out []contract.Review
	err := c.cachedGet(ctx, idPath(contract.ReviewsList, productID), &out)
	return out, err
}

func (c *Client) CreateReview(ctx context.Context, productID int64, in contract.CreateReviewInput) (*contract.Review, error) {
	var out contract.Review
	path := idPath(contract.ReviewsCreate, productID)
	if err := c.send(ctx, contract.ReviewsCreate.Method, path, in, nil, &out); err != nil {
		return nil, err
	}
	c.invalidate(idPath(contract.ReviewsList, productID))
	return &out, nil
}

func (c *Client) Cart(ctx context.Context) ([]contract.CartItem, error) {
	var out []contract.CartItem
	err := c.cachedGet(ctx, contract.CartList.Path, &out)
	return out, err
}

func (c *Client) AddToCart(ctx context.Context, in contract.AddCartItemInput) (*contract.CartItem, error) {
	var out contract.CartItem
	defer c.invalidate(contract.CartList.Path)
	if err := c.send(ctx, contract.CartAdd.Method, contract.CartAdd.Path, in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*contract.CartItem, error) {
	var out contract.CartItem
	defer c.invalidate(contract.CartList.Path)
	in := contract.UpdateCartItemInput{Quantity: quantity}
	if err := c.send(ctx, contract.CartUpdate.Method, idPath(contract.CartUpdate, itemID), in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	defer c.invalidate(contract.CartList.Path)
	return c.send(ctx, contract.CartRemove.Method, idPath(contract.CartRemove, itemID), nil, nil, nil)
}

// CreateOrder places an order from the current cart. A non-empty
// idempotencyKey makes retries return the same order.
func (c *Client) CreateOrder(ctx context.Context, in contract.CreateOrderInput, idempotencyKey string) (*contract.Order, error) {
	var out contract.Order
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{contract.IdempotencyKeyHeader: idempotencyKey}
	}
	defer c.invalidate(contract.CartList.Path)
	if err := c.send(ctx, contract.OrdersCreate.Method, contract.OrdersCreate.Path, in, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*contract.Order, error) {
	var out contract.Order
	if err := c.send(ctx, contract.OrdersGet.Method, idPath(contract.OrdersGet, id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AuthUser(ctx context.Context) (*contract.AuthUser, error) {
	var out contract.AuthUser
	if err := c.send(ctx, contract.AuthUserGet.Method, contract.AuthUserGet.Path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) cachedGet(ctx context.Context, path string, dst interface{}) error {
	c.mu.Lock()
	body, ok := c.cache[path]
	c.mu.Unlock()
	if !ok {
		var err error
		body, err = c.do(ctx, http.MethodGet, path, nil, nil)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.cache[path] = body
		c.mu.Unlock()
	}
	return json.Unmarshal(body, dst)
}

func (c *Client) invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		delete(c.cache, p)
	}
}

func (c *Client) send(ctx context.Context, method, path string, in interface{}, headers map[string]string, dst interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	respBody, err := c.do(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	if dst == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, dst)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er contract.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			apiErr.Message = er.Message
			apiErr.Field = er.Field
		}
		return nil, apiErr
	}
	return raw, nil
}

func idPath(r contract.Route, id int64) string {
	return contract.BuildURL(r.Path, map[string]interface{}{"id": strconv.FormatInt(id, 10)})
}
