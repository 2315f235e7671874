package httpkit

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtSecret string

func (s jwtSecret) GetJWTAccessSecret() string { return string(s) }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newAuthRouter(secret string, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(jwtSecret(secret))}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		c.String(http.StatusOK, id.UserID().String())
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredAcceptsAccessToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, "s3cret", jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{"admin"},
		"exp":   time.Now().Add(time.Minute).Unix(),
	})

	rec := get(newAuthRouter("s3cret"), token)
	if rec.Code != http.StatusOK || rec.Body.String() != userID.String() {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthRequiredRejects(t *testing.T) {
	userID := uuid.New().String()
	cases := map[string]string{
		"missing":       "",
		"wrong secret":  signToken(t, "other", jwt.MapClaims{"sub": userID, "type": "access"}),
		"refresh token": signToken(t, "s3cret", jwt.MapClaims{"sub": userID, "type": "refresh"}),
		"bad subject":   signToken(t, "s3cret", jwt.MapClaims{"sub": "nope", "type": "access"}),
		"expired": signToken(t, "s3cret", jwt.MapClaims{
			"sub": userID, "type": "access", "exp": time.Now().Add(-time.Minute).Unix(),
		}),
	}

	r := newAuthRouter("s3cret")
	for name, token := range cases {
		if rec := get(r, token); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	token := signToken(t, "s3cret", jwt.MapClaims{"sub": uuid.New().String(), "type": "access", "roles": []string{"sales"}})

	if rec := get(newAuthRouter("s3cret", RequireRole("admin")), token); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := get(newAuthRouter("s3cret", RequireRole("sales")), token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleErrorUnwrapsAppErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("convert: %w", apperr.NotFound("lead not found")), http.StatusNotFound},
		{apperr.Conflict("no workers available"), http.StatusConflict},
		{apperr.Unavailable("database unavailable"), http.StatusServiceUnavailable},
		{apperr.BadRequest("invalid lead id"), http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		if !HandleError(c, tc.err) {
			t.Fatalf("expected %v to be handled", tc.err)
		}
		if rec.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if HandleError(c, nil) {
		t.Fatal("nil error must not be handled")
	}
}

func TestHandleErrorRendersDetailsAndRecordsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := apperr.Validation("validation failed").WithOp("intake").WithDetails("name is required")
	HandleError(c, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"details":"name is required"`) || strings.Contains(body, "intake") {
		t.Fatalf("unexpected body %s", body)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("expected the error to be recorded on the context, got %d", len(c.Errors))
	}
}

func TestRequestLoggerLogsServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter("production", &buf)))
	r.GET("/fail", func(c *gin.Context) { HandleError(c, fmt.Errorf("db down")) })
	r.GET("/missing", func(c *gin.Context) { HandleError(c, apperr.NotFound("lead not found")) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	if strings.Contains(buf.String(), "http_error") {
		t.Fatalf("4xx responses must not be logged as errors: %s", buf.String())
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	if !strings.Contains(buf.String(), "http_error") || !strings.Contains(buf.String(), "db down") {
		t.Fatalf("expected an http_error entry, got %s", buf.String())
	}
}
