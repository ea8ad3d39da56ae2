package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestKindStatusCodes(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{BadRequest("x"), http.StatusBadRequest, "bad_request"},
		{Unauthorized("x"), http.StatusUnauthorized, "unauthorized"},
		{InvalidCredentials(), http.StatusUnauthorized, "invalid_credentials"},
		{EmailTaken(), http.StatusBadRequest, "email_taken"},
		{Forbidden("x"), http.StatusForbidden, "forbidden"},
		{NotFound("x"), http.StatusNotFound, "not_found"},
		{RateLimited(), http.StatusTooManyRequests, "rate_limited"},
		{BadGateway("x"), http.StatusBadGateway, "bad_gateway"},
		{Internal(), http.StatusInternalServerError, "internal_server_error"},
	}
	for _, tt := range tests {
		if tt.err.Status != tt.status || tt.err.Code != tt.code {
			t.Errorf("%v: got (%d, %s), want (%d, %s)",
				tt.err, tt.err.Status, tt.err.Code, tt.status, tt.code)
		}
	}
}

func TestWrite_BodyShape(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Set(RequestIDKey, "req-123")

	Write(c, Forbidden("You do not have access to this task."))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.RequestID == nil || *body.RequestID != "req-123" {
		t.Fatalf("request_id = %v, want req-123", body.RequestID)
	}
	if body.Error != "forbidden" || body.Message != "You do not have access to this task." {
		t.Fatalf("body = %+v", body)
	}
}

func TestWrite_NullRequestIDAndUnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	Write(c, errors.New("database exploded"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if raw["request_id"] != nil {
		t.Fatalf("request_id = %v, want null", raw["request_id"])
	}
	if raw["error"] != "internal_server_error" {
		t.Fatalf("error = %v", raw["error"])
	}
	if raw["message"] == "database exploded" {
		t.Fatal("internal details must not leak")
	}
}
