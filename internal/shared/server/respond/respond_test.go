package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/fail", func(c *gin.Context) {
		Error(c, http.StatusConflict, "invalid_transition", "cannot go back", gin.H{"position": 0})
		c.JSON(http.StatusOK, gin.H{"unreachable": true})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/fail", nil))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}

	var payload ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != "invalid_transition" || payload.Error.Message != "cannot go back" {
		t.Fatalf("unexpected error body: %+v", payload.Error)
	}
	if payload.Error.Details == nil {
		t.Fatalf("expected details")
	}
}

func TestCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/things", func(c *gin.Context) {
		Created(c, gin.H{"id": "1"})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/things", nil))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
}
