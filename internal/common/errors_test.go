package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{nil, nil},
		{fmt.Errorf("match: %w", ErrSchemaViolation), ErrSchemaViolation},
		{NewAppError("CONFIG_ERROR", "bad", ErrInvalidInput), ErrInvalidInput},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), ErrTimeout},
		{context.Canceled, ErrSuperseded},
		{errors.New("boom"), ErrInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{ErrTimeout, codes.DeadlineExceeded},
		{ErrProviderUnavailable, codes.Unavailable},
		{ErrSchemaViolation, codes.DataLoss},
		{ErrEmptyResponse, codes.DataLoss},
		{ErrInvalidInput, codes.InvalidArgument},
		{ErrReviewRequired, codes.FailedPrecondition},
		{ErrSuperseded, codes.Aborted},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		if got := ToStatus(tt.err).Code(); got != tt.want {
			t.Errorf("ToStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestAppError(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "parse config.yaml", ErrInvalidInput)
	if got := err.Error(); got != "CONFIG_ERROR: parse config.yaml: invalid input" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("AppError does not unwrap to its cause")
	}
	if WrapError(nil, "x") != nil {
		t.Error("WrapError(nil) must be nil")
	}
	if w := WrapError(ErrTimeout, "draft"); !errors.Is(w, ErrTimeout) || w.Error() != "draft: inference provider timeout" {
		t.Errorf("WrapError = %v", w)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if RunIDFromContext(ctx) != "" {
		t.Error("empty context carries a run id")
	}
	if got := RunIDFromContext(WithRunID(ctx, "r-1")); got != "r-1" {
		t.Errorf("run id = %q", got)
	}
}
