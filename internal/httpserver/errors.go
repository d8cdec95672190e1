package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/contract"
	"storefront/internal/domain"
)

// writeError maps service errors to responses. Unclassified errors are logged
// and hidden behind a generic 500.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, contract.ErrorResponse{Message: capitalize(verr.Message), Field: verr.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, contract.ErrorResponse{Message: "Not found"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, contract.ErrorResponse{Message: "Cart is empty"})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, contract.ErrorResponse{Message: capitalize(err.Error())})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, contract.ErrorResponse{Message: capitalize(err.Error())})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, contract.ErrorResponse{Message: "Idempotency key already used"})
	case errors.Is(err, domain.ErrNoIdentity):
		c.JSON(http.StatusUnauthorized, contract.ErrorResponse{Message: "Unauthorized"})
	default:
		logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, contract.ErrorResponse{Message: "Internal Server Error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
