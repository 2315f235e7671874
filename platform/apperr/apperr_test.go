package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		NotFound("x"):                http.StatusNotFound,
		Validation("x"):              http.StatusBadRequest,
		BadRequest("x"):              http.StatusBadRequest,
		Conflict("x"):                http.StatusConflict,
		Forbidden("x"):               http.StatusForbidden,
		Unauthorized("x"):            http.StatusUnauthorized,
		Unavailable("x"):             http.StatusServiceUnavailable,
		Wrap(KindInternal, "x", nil): http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := err.HTTPStatus(); got != want {
			t.Errorf("kind %d: expected %d, got %d", err.Kind, want, got)
		}
	}
}

func TestOpAppearsInErrorText(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(KindNotFound, "lead not found", cause).WithOp("ConvertLead")

	if err.Error() != "ConvertLead: lead not found" {
		t.Fatalf("unexpected text %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must stay reachable")
	}
	if !Is(fmt.Errorf("outer: %w", err), KindNotFound) {
		t.Fatal("kind must survive wrapping")
	}
	if GetKind(cause) != KindUnknown {
		t.Fatal("plain errors have no kind")
	}
}
