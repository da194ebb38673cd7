package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/dzshuffled/internal/services"
	"github.com/desertthunder/dzshuffled/internal/shared"
)

// CodeResult carries the outcome of a single authorization redirect.
type CodeResult struct {
	Code string
	Err  error
}

// CodeHandler receives Deezer's redirect on [services.RedirectPath] and hands the code to whoever waits on [CodeHandler.Result].
type CodeHandler struct {
	results chan CodeResult
	once    sync.Once
	mu      sync.Mutex
	hit     bool
}

// NewCodeHandler creates a handler that accepts exactly one redirect.
func NewCodeHandler() *CodeHandler {
	return &CodeHandler{results: make(chan CodeResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *CodeHandler) Routes() []string {
	return []string{services.RedirectPath}
}

// ServeHTTP extracts the code parameter. A redirect without one, as sent when the user declines, fails the flow.
func (h *CodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		reason := q.Get("error_reason")
		if reason == "" {
			reason = "no code in redirect"
		}
		h.Send(CodeResult{Err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, reason)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CodeResult{Code: code})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send delivers result once; later results are dropped.
func (h *CodeHandler) Send(result CodeResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns a channel receiving exactly one result before it is closed.
func (h *CodeHandler) Result() <-chan CodeResult {
	return h.results
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>dzshuffled</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121216; }
        .container { text-align: center; background: #1f1f26; padding: 2rem; border-radius: 8px; }
        h1 { color: #a238ff; margin: 0 0 1rem 0; }
        p { color: #b4b4bf; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization complete</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
