package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/hirepath/internal/pricing"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"github.com/justsurfingit/hirepath/internal/services"
	"github.com/justsurfingit/hirepath/internal/storage"
	"gorm.io/gorm"
)

// respondError maps service and ORM errors to REST statuses. Unknown errors
// are logged and hidden behind a generic message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, storage.ErrObjectNotFound):
		status, msg = http.StatusNotFound, "resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		status, msg = http.StatusConflict, "resource already exists"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		status, msg = http.StatusConflict, "resource is referenced by other records"
	case errors.As(err, &verrs), errors.Is(err, services.ErrInvalidInput), errors.Is(err, pricing.ErrInvalidSignature):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, rbac.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrQuotaExceeded):
		status, msg = http.StatusPaymentRequired, err.Error()
	case errors.Is(err, pricing.ErrPackUnavailable):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrUnavailable), errors.Is(err, pricing.ErrPackNotSynced):
		status, msg = http.StatusServiceUnavailable, err.Error()
	}

	if status == http.StatusInternalServerError {
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// badRequest answers binding failures.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

func unavailable(c *gin.Context, feature string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": feature + " is not configured"})
}

// pathID parses a numeric path parameter, answering 400 when malformed.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user id.
func currentUser(c *gin.Context) (uint, bool) {
	claims, ok := rbac.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return 0, false
	}
	return claims.UserID, true
}
