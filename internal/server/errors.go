package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/movieshop/internal/auth/domain"
	"github.com/smallbiznis/movieshop/internal/authorization"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	paymentdomain "github.com/smallbiznis/movieshop/internal/payment/domain"
	profiledomain "github.com/smallbiznis/movieshop/internal/profile/domain"
	purchasedomain "github.com/smallbiznis/movieshop/internal/purchase/domain"
	"github.com/smallbiznis/movieshop/internal/validation"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

// rateLimitedError carries the wait before the client may retry.
type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string { return ErrTooManyRequests.Error() }

func (e *rateLimitedError) Unwrap() error { return ErrTooManyRequests }

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		var limited *rateLimitedError
		if errors.As(lastErr.Err, &limited) && limited.retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(limited.retryAfter.Round(time.Second).Seconds())))
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return validation.Errors{{Field: "request", Code: "invalid_request", Message: "invalid request"}}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if errs, ok := validation.As(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  errs,
		}
	}

	switch {
	case isInvalidIDError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  []validation.FieldError{{Field: "id", Code: "invalid_id", Message: "invalid identifier"}},
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Code:    err.Error(),
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, purchasedomain.ErrNotEntitled),
		errors.Is(err, paymentdomain.ErrChargeDeclined):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_required",
			Code:    err.Error(),
			Message: "payment required",
		}
	case errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, profiledomain.ErrProfileExists),
		errors.Is(err, moviedomain.ErrMovieHasEntitlements),
		errors.Is(err, purchasedomain.ErrPurchaseInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  []validation.FieldError{{Field: "request", Code: "invalid_request", Message: "invalid request"}},
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isInvalidIDError(err error) bool {
	switch {
	case errors.Is(err, moviedomain.ErrInvalidID),
		errors.Is(err, genredomain.ErrInvalidID),
		errors.Is(err, moviegenredomain.ErrInvalidID),
		errors.Is(err, profiledomain.ErrInvalidID),
		errors.Is(err, purchasedomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, moviedomain.ErrNotFound),
		errors.Is(err, genredomain.ErrNotFound),
		errors.Is(err, moviegenredomain.ErrMovieNotFound),
		errors.Is(err, moviegenredomain.ErrGenreNotFound),
		errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog feeds the request logger without exposing internals.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Code
	if code == "" && status >= http.StatusInternalServerError {
		code = "internal"
	}
	return payload.Type, code
}
