package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// CodeFlow runs the browser side of the authorization code flow. It implements [services.Authorizer].
type CodeFlow struct {
	// Host the listener binds to. Defaults to localhost.
	Host string
	// Timeout bounds the wait for the redirect. Zero waits until ctx is done.
	Timeout time.Duration
	// Open launches the consent page. Defaults to [shared.OpenBrowser].
	Open func(url string) error
	// Notify is called with the consent URL when Open fails so the user can visit it by hand.
	Notify func(url string)

	logger *log.Logger
}

// NewCodeFlow creates a flow with the default browser launcher.
func NewCodeFlow(timeout time.Duration, logger *log.Logger) *CodeFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &CodeFlow{
		Host:    "localhost",
		Timeout: timeout,
		Open:    shared.OpenBrowser,
		logger:  logger,
	}
}

// AuthorizationCode serves the redirect endpoint on port, opens authURL and blocks until a code arrives.
//
// The listener is shut down before returning, whatever the outcome.
func (f *CodeFlow) AuthorizationCode(ctx context.Context, authURL string, port int) (string, error) {
	handler := NewCodeHandler()
	router := NewBasicRouter()
	router.Use(Logging(f.logger))
	router.Handler(handler)

	host := f.Host
	if host == "" {
		host = "localhost"
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return "", fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		f.logger.Debug("waiting for authorization redirect", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			f.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	open := f.Open
	if open == nil {
		open = shared.OpenBrowser
	}
	if err := open(authURL); err != nil {
		f.logger.Warn("failed to open browser", "error", err)
		if f.Notify != nil {
			f.Notify(authURL)
		}
	}

	var timeout <-chan time.Time
	if f.Timeout > 0 {
		timer := time.NewTimer(f.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case result := <-handler.Result():
		if result.Err != nil {
			return "", result.Err
		}
		return result.Code, nil
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout:
		return "", fmt.Errorf("%w: no authorization after %v", shared.ErrTimeout, f.Timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
