package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/toxzak-svg/Axievale/internal/models"
	"github.com/toxzak-svg/Axievale/internal/services"
)

func newValuationRig(valuator Valuator) *gin.Engine {
	handler := NewValuationHandler(valuator)
	router := gin.New()
	router.GET("/api/axie/:id/valuation", handler.GetValuation)
	router.POST("/api/valuation/batch", handler.BatchValuation)
	return router
}

func TestGetValuation(t *testing.T) {
	valuator := &fakeValuator{axie: &models.Axie{ID: "7"}, valuation: fakeValuation("7")}
	router := newValuationRig(valuator)

	req := httptest.NewRequest("GET", "/api/axie/7/valuation", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Valuation models.Valuation `json:"valuation"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.Data.Valuation.AxieID != "7" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestGetValuationNotFound(t *testing.T) {
	router := newValuationRig(&fakeValuator{err: services.ErrAxieNotFound})

	req := httptest.NewRequest("GET", "/api/axie/ghost/valuation", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestBatchValuation(t *testing.T) {
	valuator := &fakeValuator{axie: &models.Axie{ID: "x"}, valuation: fakeValuation("x")}
	router := newValuationRig(valuator)

	req := httptest.NewRequest("POST", "/api/valuation/batch", bytes.NewBufferString(`{"axieIds": ["1", "2", "3"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool               `json:"success"`
		Data    []models.BatchItem `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(resp.Data))
	}
	for i, id := range []string{"1", "2", "3"} {
		if resp.Data[i].AxieID != id {
			t.Errorf("Item %d: expected id %s, got %s", i, id, resp.Data[i].AxieID)
		}
	}
}

func TestBatchValuationRejectsBadRequests(t *testing.T) {
	router := newValuationRig(&fakeValuator{})

	cases := []struct {
		name string
		body string
	}{
		{"not json", `axieIds=1`},
		{"empty list", `{"axieIds": []}`},
		{"missing field", `{}`},
		{"over limit", `{"axieIds": ["` + strings.Repeat(`x", "`, 10) + `x"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/valuation/batch", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
