package httpserver

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/contract"
	"storefront/internal/domain"
	"storefront/internal/session"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

func (h *handlers) listProducts(c *gin.Context) {
	newArrivals, _ := strconv.ParseBool(c.Query("newArrivals"))
	products, err := h.deps.ProductSvc.List(c.Request.Context(), domain.ProductFilter{
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		NewArrivals: newArrivals,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromProducts(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromProduct(*p))
}

func (h *handlers) listReviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reviews, err := h.deps.ReviewSvc.List(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromReviews(reviews))
}

func (h *handlers) createReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in contract.CreateReviewInput
	if !bindJSON(c, &in) {
		return
	}
	var userID *string
	if claims, ok := session.ClaimsFrom(c); ok {
		uid := claims.UserID()
		userID = &uid
	}
	rv, err := h.deps.ReviewSvc.Create(c.Request.Context(), id, userID, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, contract.FromReview(*rv))
}

func (h *handlers) listCart(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	items, err := h.deps.CartSvc.List(c.Request.Context(), ident)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromCartItems(items))
}

func (h *handlers) addCartItem(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	var in contract.AddCartItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.deps.CartSvc.Add(c.Request.Context(), ident, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, contract.FromCartItem(*item))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in contract.UpdateCartItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.deps.CartSvc.Update(c.Request.Context(), ident, id, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromCartItem(*item))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Remove(c.Request.Context(), ident, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createOrder(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	var in contract.CreateOrderInput
	if !bindJSON(c, &in) {
		return
	}
	o, err := h.deps.OrderSvc.Place(c.Request.Context(), ident, in, c.GetHeader(contract.IdempotencyKeyHeader))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, contract.FromOrder(*o))
}

func (h *handlers) getOrder(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), ident, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromOrder(*o))
}

func (h *handlers) authUser(c *gin.Context) {
	claims, ok := session.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, contract.ErrorResponse{Message: "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, contract.AuthUser{ID: claims.UserID(), Email: claims.Email, Name: claims.Name})
}

func (h *handlers) identity(c *gin.Context) (domain.Identity, bool) {
	ident, err := session.Identity(c)
	if err != nil {
		writeError(c, h.logger, err)
		return domain.Identity{}, false
	}
	return ident, true
}

func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, contract.ErrorResponse{Message: fmt.Sprintf("Invalid id %q", raw), Field: "id"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		msg := "Invalid JSON body"
		if strings.Contains(err.Error(), "cannot unmarshal") {
			msg = "Invalid field type in JSON body"
		}
		c.JSON(http.StatusBadRequest, contract.ErrorResponse{Message: msg})
		return false
	}
	return true
}
