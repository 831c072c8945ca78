package handler_global

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fragforce/campusevents/lib/handlers"
	"github.com/gin-gonic/gin"
)

func TestGlobalRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := handlers.NewEngine()
	RegisterGlobalHandlers(r)

	for _, path := range []string{"/", "/api/health"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("GET %s status = %d, want 200", path, w.Code)
			}
			var resp handlers.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad body %q: %v", w.Body.String(), err)
			}
			if resp.Status != "healthy" {
				t.Errorf("status = %q, want healthy", resp.Status)
			}
		})
	}

	t.Run("/metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET /metrics status = %d, want 200", w.Code)
		}
		if !strings.Contains(w.Body.String(), "campusevents_scrapes_in_flight") {
			t.Error("/metrics is missing the scrape collectors")
		}
	})
}
