package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds surfaced by the inference gateway and the pipeline.
var (
	ErrProviderUnavailable = errors.New("inference provider unavailable")
	ErrTimeout             = errors.New("inference provider timeout")
	ErrSchemaViolation     = errors.New("response violates output schema")
	ErrEmptyResponse       = errors.New("empty response from inference provider")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrReviewRequired      = errors.New("review required")
	ErrSuperseded          = errors.New("run superseded")
	ErrInternal            = errors.New("internal error")
)

var kinds = []error{
	ErrTimeout,
	ErrProviderUnavailable,
	ErrSchemaViolation,
	ErrEmptyResponse,
	ErrValidation,
	ErrInvalidInput,
	ErrReviewRequired,
	ErrSuperseded,
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf returns the sentinel kind carried by err, or ErrInternal when none matches.
// Context deadline errors are reported as ErrTimeout and cancellation as ErrSuperseded.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrSuperseded
	}
	return ErrInternal
}

// ToStatus maps err onto a gRPC status for daemon reporting.
func ToStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	var code codes.Code
	switch KindOf(err) {
	case ErrTimeout:
		code = codes.DeadlineExceeded
	case ErrProviderUnavailable:
		code = codes.Unavailable
	case ErrSchemaViolation, ErrEmptyResponse:
		code = codes.DataLoss
	case ErrInvalidInput:
		code = codes.InvalidArgument
	case ErrReviewRequired:
		code = codes.FailedPrecondition
	case ErrSuperseded:
		code = codes.Aborted
	default:
		code = codes.Internal
	}
	return status.New(code, err.Error())
}
