package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type staticHandler struct {
	routes []string
	body   string
}

func (s staticHandler) Routes() []string { return s.routes }

func (s staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, s.body)
}

func TestBasicRouter(t *testing.T) {
	t.Run("Unknown Path", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(staticHandler{routes: []string{"/authfinish"}, body: "ok"})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handler(staticHandler{routes: []string{"/a"}, body: "a"})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
		if strings.Join(order, ",") != "first,second" {
			t.Errorf("expected first,second, got %v", order)
		}
	})

	t.Run("Logging Omits Query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(Logging(logger))
		router.Handler(staticHandler{routes: []string{"/authfinish"}, body: "ok"})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/authfinish?code=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "/authfinish") {
			t.Errorf("expected path in log, got %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Errorf("expected code to stay out of the log, got %q", out)
		}
	})
}
