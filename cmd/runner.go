package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/scenarios"
	"github.com/desertthunder/dzshuffled/internal/server"
	"github.com/desertthunder/dzshuffled/internal/services"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/desertthunder/dzshuffled/internal/tasks"
	"github.com/urfave/cli/v3"
)

// errConfigCreated stops the program after a default configuration file was written.
var errConfigCreated = errors.New("default configuration created")

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Services are built by [Runner.Setup] once the configuration is loaded.
type Runner struct {
	store      *shared.Store
	session    *services.Session
	api        *services.APIService
	auth       *services.AuthService
	library    *services.DeezerService
	engine     *tasks.PlaylistEngine
	dispatcher *scenarios.Dispatcher
	authorizer services.Authorizer
	baseURL    string
	connectURL string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	silent     bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	// Store replaces the configuration file named by --config.
	Store *shared.Store
	// Authorizer replaces the browser based [server.CodeFlow].
	Authorizer services.Authorizer
	BaseURL    string
	ConnectURL string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		store:      opts.Store,
		authorizer: opts.Authorizer,
		baseURL:    opts.BaseURL,
		connectURL: opts.ConnectURL,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, playlistsCommand, tracksCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Setup applies the global flags, loads the configuration and wires the services.
//
// A missing configuration file is created from the embedded default and [errConfigCreated] is returned.
// With --edit the services are not wired.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.silent = cmd.Bool("silent")

	if r.store == nil {
		store, err := r.loadStore(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.store = store
	}

	// --edit must open a config whose system options do not parse yet.
	if cmd.Bool("edit") {
		return ctx, nil
	}
	return ctx, r.wire()
}

func (r *Runner) loadStore(path string) (*shared.Store, error) {
	store, err := shared.LoadConfig(path)
	if err == nil {
		r.logger.Debug("loaded config", "path", path)
		return store, nil
	}
	if !errors.Is(err, shared.ErrMissingConfig) {
		return nil, err
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return nil, fmt.Errorf("failed to create default config: %w", err)
	}
	r.writePlain("Created default configuration at %s\n", path)
	r.writePlain("Set auth.app_id and auth.secret from your Deezer application, add scenarios and run again.\n")
	return nil, errConfigCreated
}

// wire builds the service graph from the store: session, API client, auth manager, library, engine and dispatcher.
func (r *Runner) wire() error {
	port, err := r.store.Port()
	if err != nil {
		return err
	}
	rps, err := r.store.RateLimit()
	if err != nil {
		return err
	}
	timeout, err := r.store.AuthTimeout()
	if err != nil {
		return err
	}

	r.session = services.NewSession()
	r.api = services.NewAPIService(services.APIOpts{
		BaseURL:    r.baseURL,
		HTTPClient: r.httpClient,
		Tokens:     r.session,
		RateLimit:  rps,
		Logger:     r.logger,
	})

	authorizer := r.authorizer
	if authorizer == nil {
		flow := server.NewCodeFlow(timeout, r.logger)
		flow.Notify = func(url string) {
			r.writePlainln("Could not open a browser. Open this URL to authorize dzshuffled:\n%s", url)
		}
		authorizer = flow
	}

	r.auth = services.NewAuthService(services.AuthOpts{
		Session:    r.session,
		API:        r.api,
		Authorizer: authorizer,
		ConnectURL: r.connectURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	appID, secret, token := r.store.Credentials()
	r.auth.SetParameters(port, secret, appID, token)

	r.library = services.NewDeezerService(services.DeezerOpts{API: r.api, Users: r.auth, Logger: r.logger})
	r.engine = tasks.NewPlaylistEngine(r.library, r.logger)
	r.dispatcher = scenarios.NewDispatcher(r.store, r.engine, r.logger)
	return nil
}

// SetLogger replaces the logger of the runner and every wired service.
func (r *Runner) SetLogger(logger *log.Logger) error {
	r.logger = logger
	if r.store == nil {
		return nil
	}
	return r.wire()
}

// ensureToken verifies the token before any library access, authorizing and saving a new one when needed.
func (r *Runner) ensureToken(ctx context.Context) error {
	if r.auth == nil {
		if err := r.wire(); err != nil {
			return err
		}
	}

	renewed, err := r.auth.EnsureToken(ctx, r.store)
	if err != nil {
		return err
	}
	if renewed {
		r.logger.Info("saved new token", "path", r.store.Path())
		r.writePlain("%s\n", okStyle.Render("✓ Authorized, new token saved"))
	}
	return nil
}

func (r *Runner) writeJSON(data any) error {
	output, err := shared.MarshalJSON(data, true)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.writeBytes(append(output, '\n'))
}

func (r *Runner) writeBytes(data []byte) error {
	if r.silent {
		return nil
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	return r.writeBytes([]byte(fmt.Sprintf(format, args...)))
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writeBytes([]byte("\n" + fmt.Sprintf(format, args...) + "\n"))
}
