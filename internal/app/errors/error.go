package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Causes carried by AppErrors on the redemption and ledger paths.
var (
	ErrCouponNotActive     = stderrors.New("coupon is not active")
	ErrCouponExpired       = stderrors.New("coupon expired")
	ErrCouponFullyRedeemed = stderrors.New("coupon fully redeemed")
	ErrCouponAlreadyUsed   = stderrors.New("coupon already used by this user")
	ErrDiscountTooLarge    = stderrors.New("discount exceeds coupon allowance")
	ErrDuplicateClaim      = stderrors.New("coupon already claimed by this user")
	ErrInsufficientPoints  = stderrors.New("insufficient points")
	ErrDuplicateAward      = stderrors.New("points already awarded for this order")
)

type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// Wrap attaches a sentinel cause so callers can match it with errors.Is.
func Wrap(statusCode int, cause error, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        cause,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, "Unauthorized")
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

func NewTooManyRequestsError(message string, limit int, reset int64) *AppError {
	return NewAppError(http.StatusTooManyRequests, fmt.Sprintf("%s (limit %d, resets at %d)", message, limit, reset))
}

func NewInternalServerError(originalError error, message string) *AppError {
	if originalError != nil {
		logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	}
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        originalError,
	}
}
