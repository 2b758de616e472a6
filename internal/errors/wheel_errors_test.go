package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewInvalidInputError("volatility", "close_to_close", "non-positive close")
	msg := err.Error()
	if !strings.Contains(msg, "INVALID_INPUT") || !strings.Contains(msg, "volatility") {
		t.Errorf("message missing category or component: %s", msg)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	underlying := fmt.Errorf("disk on fire")
	err := Wrap(underlying, ErrorCategoryInsufficientData, "data", "load")

	if !errors.Is(err, underlying) {
		t.Error("wrapped error lost its underlying cause")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("message dropped the cause: %s", err.Error())
	}
	if Wrap(nil, ErrorCategoryInvalidInput, "x", "y") != nil {
		t.Error("wrapping nil should be nil")
	}
}

func TestIsCategory(t *testing.T) {
	err := NewInsufficientDataError("volatility", "blend", "no estimators")
	if !IsCategory(err, ErrorCategoryInsufficientData) {
		t.Error("category not detected")
	}
	if IsCategory(err, ErrorCategoryInvalidInput) {
		t.Error("wrong category matched")
	}
	if IsCategory(fmt.Errorf("plain"), ErrorCategoryInvalidInput) {
		t.Error("plain error matched a category")
	}

	// Detection works through wrapping.
	wrapped := fmt.Errorf("context: %w", err)
	if !IsCategory(wrapped, ErrorCategoryInsufficientData) {
		t.Error("category lost through fmt.Errorf wrapping")
	}
}

func TestInvalidStateErrorNamesActionAndState(t *testing.T) {
	err := NewInvalidStateError("wheel", "sell_call", "CASH")
	msg := err.Error()
	if !strings.Contains(msg, "sell_call") || !strings.Contains(msg, "CASH") {
		t.Errorf("message must name action and state: %s", msg)
	}
	if err.Context["state"] != "CASH" || err.Context["action"] != "sell_call" {
		t.Errorf("context not populated: %+v", err.Context)
	}
}
