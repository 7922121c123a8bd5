package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"vhostmgr/internal/result"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := setupTestRouter()
	r.GET("/test", handler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return w, resp
}

func TestOK(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) {
		OK(c, gin.H{"pong": true})
	})

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if resp.Code != CodeSuccess || resp.Message != "success" {
		t.Errorf("Expected success envelope, got %+v", resp)
	}
	if resp.Data == nil {
		t.Error("Expected data to be non-nil")
	}
}

func TestOKMsg(t *testing.T) {
	_, resp := serve(t, func(c *gin.Context) {
		OKMsg(c, "Domain example.com deleted successfully", nil)
	})

	if resp.Message != "Domain example.com deleted successfully" {
		t.Errorf("Expected custom message, got '%s'", resp.Message)
	}
}

func TestFailErr(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		status  int
		code    int
		message string
	}{
		{"not found", ErrNotFound("Domain example.com not found"), http.StatusNotFound, CodeNotFound, "Domain example.com not found"},
		{"internal err hidden", ErrInternalError("failed to list domains", errors.New("permission denied")), http.StatusInternalServerError, CodeInternalError, "failed to list domains"},
		{"rate limited", ErrRateLimited(), http.StatusTooManyRequests, CodeRateLimited, "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, func(c *gin.Context) {
				FailErr(c, tt.err)
			})

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if resp.Code != tt.code || resp.Message != tt.message {
				t.Errorf("Expected %d %q, got %d %q", tt.code, tt.message, resp.Code, resp.Message)
			}
			if resp.Data != nil {
				t.Error("Expected data to be nil for error response")
			}
		})
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		name   string
		res    result.Result
		status int
		code   int
	}{
		{"success", result.OK("Domain example.com added successfully"), http.StatusOK, CodeSuccess},
		{"exists", result.Fail(result.KindAlreadyExists, "Domain example.com already exists"), http.StatusConflict, CodeAlreadyExists},
		{"reload", result.Fail(result.KindReloadFailed, "Failed to reload nginx"), http.StatusInternalServerError, CodeReloadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupTestRouter()
			r.GET("/test", func(c *gin.Context) {
				Result(c, tt.res)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}

			var resp struct {
				Code    int           `json:"code"`
				Message string        `json:"message"`
				Data    result.Result `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}

			if resp.Code != tt.code {
				t.Errorf("Expected code %d, got %d", tt.code, resp.Code)
			}
			if resp.Message != tt.res.Message || resp.Data.Message != tt.res.Message {
				t.Errorf("Expected message %q in envelope and data, got %q / %q", tt.res.Message, resp.Message, resp.Data.Message)
			}
			if resp.Data.Success != tt.res.Success {
				t.Errorf("Expected success %v, got %v", tt.res.Success, resp.Data.Success)
			}
		})
	}
}
