package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// mapDomainError converts application errors to an HTTP status and body.
func mapDomainError(err error) (int, ErrorBody) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorBody{Code: CodeUnauthenticated, Message: auth.ErrUnauthenticated.Error()}

	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Code: CodeForbidden, Message: auth.ErrForbidden.Error()}

	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "product not found"}

	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "category not found"}

	case errors.Is(err, domain.ErrSlugTaken):
		return http.StatusConflict, ErrorBody{Code: CodeConflict, Message: domain.ErrSlugTaken.Error()}

	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidProductType),
		errors.Is(err, domain.ErrInvalidStockMode),
		errors.Is(err, domain.ErrInvalidStockCount),
		errors.Is(err, domain.ErrEmptySlug),
		errors.Is(err, contracts.ErrInvalidCursor):
		return http.StatusBadRequest, ErrorBody{Code: CodeBadRequest, Message: err.Error()}

	default:
		return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "internal server error"}
	}
}

// respondError writes err as a JSON error and aborts the chain. Unexpected
// errors are logged; their text never reaches the caller.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, body := mapDomainError(err)
	if status == http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": requestID(c),
		}).WithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

// respondBindError reports a request that failed binding or validation.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
			Code:    CodeValidation,
			Message: "request validation failed",
			Details: fieldErrors(verrs),
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Code: CodeBadRequest, Message: err.Error()})
}
