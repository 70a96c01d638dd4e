package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
		show   bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, show: true},
		{code: CodeConflict, status: http.StatusBadRequest, show: true},
		{code: CodeNotFound, status: http.StatusNotFound, show: true},
		{code: CodeInternal, status: http.StatusInternalServerError, show: false},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.ShowMessage != tt.show {
			t.Fatalf("code %s expected show message %v got %v", tt.code, tt.show, meta.ShowMessage)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s has no public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	wrapped := Internal(cause, "list rsvps")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Detail() != "connection refused" {
		t.Fatalf("unexpected detail %q", wrapped.Detail())
	}

	withDetail := Validation("bad phone").WithDetail("field %s", "phone")
	if withDetail.Detail() != "field phone" {
		t.Fatalf("unexpected detail %q", withDetail.Detail())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	typed := NotFound("RSVP tidak ditemukan")
	err := fmt.Errorf("get rsvp: %w", typed)

	if got := As(err); got != typed {
		t.Fatalf("expected typed error, got %v", got)
	}
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("unexpected code %s", CodeOf(err))
	}
	if CodeOf(stdErrors.New("boom")) != CodeInternal {
		t.Fatalf("untyped errors must be internal")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) must be nil")
	}
}
