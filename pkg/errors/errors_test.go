package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeInvalidAmount, http.StatusBadRequest},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyCompleted, http.StatusUnprocessableEntity},
		{CodeExpired, http.StatusUnprocessableEntity},
		{CodeDisputeActive, http.StatusConflict},
		{CodePaused, http.StatusServiceUnavailable},
		{CodeTransferFailed, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeDependency, cause, "transfer ledger write")
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if As(err).Code() != CodeDependency {
		t.Fatalf("unexpected code %s", As(err).Code())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeDisputeActive, "dispute open")
	if !IsCode(err, CodeDisputeActive) {
		t.Fatal("expected IsCode match")
	}
	if IsCode(err, CodeExpired) {
		t.Fatal("unexpected IsCode match")
	}
	if IsCode(errors.New("plain"), CodeExpired) {
		t.Fatal("plain error should not match")
	}
}
