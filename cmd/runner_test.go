package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/shared"
	tu "github.com/desertthunder/dzshuffled/internal/testing"
)

const testConfig = `
[system]
port = 8090
rate_limit = 1000

[auth]
app_id = "app"
secret = "s3cret"
token = "good"

[pl_mix]
title = "Mix"
type = "shuffled"
source = "Jazz, Rock"

[pl_missing]
title = "Nothing"
type = "shuffled"
source = "Blues"
limit = 5
`

type stubAuthorizer struct {
	code  string
	calls int
}

func (s *stubAuthorizer) AuthorizationCode(ctx context.Context, authURL string, port int) (string, error) {
	s.calls++
	return s.code, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newDeezer(t *testing.T, token string) *tu.DeezerServer {
	t.Helper()
	deezer := tu.NewDeezerServer(t, token)
	deezer.Playlists = []models.Playlist{
		{ID: 1, Title: "Jazz", TrackCount: 3},
		{ID: 2, Title: "Rock", TrackCount: 2},
	}
	deezer.Tracks[1] = tu.Tracks(1, 2, 3)
	deezer.Tracks[2] = tu.Tracks(3, 4)
	return deezer
}

func newTestRunner(t *testing.T, deezer *tu.DeezerServer, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	if opts.Store == nil {
		store, err := shared.ParseConfig([]byte(testConfig))
		if err != nil {
			t.Fatalf("failed to parse test config: %v", err)
		}
		opts.Store = store
	}
	output := &bytes.Buffer{}
	opts.Output = output
	opts.Logger = quietLogger()
	if deezer != nil {
		opts.BaseURL = deezer.URL
	}
	return NewRunner(opts), output
}

func run(r *Runner, args ...string) error {
	app := rootCommand(r)
	app.Writer = io.Discard
	return app.Run(context.Background(), append([]string{"dzshuffled"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			store, err := shared.ParseConfig([]byte(testConfig))
			if err != nil {
				t.Fatal(err)
			}
			logger := quietLogger()
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			authorizer := &stubAuthorizer{}

			runner := NewRunner(RunnerOpts{
				Store:      store,
				Authorizer: authorizer,
				HTTPClient: httpClient,
				Logger:     logger,
				Output:     output,
			})

			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.authorizer != authorizer {
				t.Error("expected authorizer to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int))
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"})
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("done")
			if result := output.String(); result != "\ndone\n" {
				t.Errorf("expected newline wrapped text, got %q", result)
			}
		})

		t.Run("silent mode writes nothing", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			runner.silent = true

			if err := runner.writePlain("test"); err != nil {
				t.Errorf("expected silent write to succeed, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}
		for _, want := range []string{"auth", "playlists", "tracks", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %s command, got %v", want, names)
			}
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("creates a missing config and stops", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: quietLogger()})

		err := run(runner, "--config", path, "-l")
		if !errors.Is(err, errConfigCreated) {
			t.Fatalf("expected errConfigCreated, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "[auth]") {
			t.Errorf("expected default config content, got %q", content)
		}
		if !strings.Contains(output.String(), "Created default configuration at "+path) {
			t.Errorf("expected creation notice, got %q", output.String())
		}
	})

	t.Run("loads the config named by --config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(testConfig), 0600); err != nil {
			t.Fatal(err)
		}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: quietLogger()})

		if err := run(runner, "--config", path, "-l"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.store.Path() != path {
			t.Errorf("expected store path %s, got %s", path, runner.store.Path())
		}
		if !strings.Contains(output.String(), "0. pl_mix") {
			t.Errorf("expected scenario list, got %q", output.String())
		}
	})

	t.Run("rejects an invalid port", func(t *testing.T) {
		store, err := shared.ParseConfig([]byte("[system]\nport = \"abc\"\n"))
		if err != nil {
			t.Fatal(err)
		}
		runner, _ := newTestRunner(t, nil, RunnerOpts{Store: store})

		if err := run(runner, "-l"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("edits a config with an invalid port", func(t *testing.T) {
		if _, err := exec.LookPath("cp"); err != nil {
			t.Skip("cp not available")
		}
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		fixed := filepath.Join(dir, "fixed.toml")
		if err := os.WriteFile(path, []byte("[system]\nport = \"abc\"\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fixed, []byte(testConfig), 0600); err != nil {
			t.Fatal(err)
		}
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: quietLogger()})

		if err := run(runner, "--config", path, "-e", "--editor", "cp "+fixed); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if content := tu.MustReadFile(t, path); content != testConfig {
			t.Errorf("expected the editor to rewrite the config, got %q", content)
		}
	})

	t.Run("silent suppresses output", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "-s", "-l"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.Len() != 0 {
			t.Errorf("expected no output, got %q", output.String())
		}
	})
}

func TestScenarioActions(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "-l"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := "0. pl_mix\n1. pl_missing\n"
		if output.String() != want {
			t.Errorf("expected %q, got %q", want, output.String())
		}
	})

	t.Run("verbose list", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "-l", "-v"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Title: Mix", "Sources: Jazz, Rock", "Limit: 5"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in %q", want, output.String())
			}
		}
	})

	t.Run("info by name and number", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		for _, input := range []string{"pl_missing", "1"} {
			runner, output := newTestRunner(t, deezer, RunnerOpts{})

			if err := run(runner, "-i", input); err != nil {
				t.Fatalf("expected no error for %s, got %v", input, err)
			}
			for _, want := range []string{"1. [pl_missing]", "title = Nothing", "limit = 5"} {
				if !strings.Contains(output.String(), want) {
					t.Errorf("expected %q in %q", want, output.String())
				}
			}
		}
		if len(deezer.Requests) != 0 {
			t.Errorf("expected info to make no requests, got %v", deezer.Requests)
		}
	})

	t.Run("unknown scenario", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "pl_nope"); !errors.Is(err, shared.ErrUnknownScenario) {
			t.Errorf("expected ErrUnknownScenario, got %v", err)
		}
		if err := run(runner, "7"); !errors.Is(err, shared.ErrUnknownScenario) {
			t.Errorf("expected ErrUnknownScenario, got %v", err)
		}
	})

	t.Run("invalid scenario name", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "system"); !errors.Is(err, shared.ErrInvalidScenario) {
			t.Errorf("expected ErrInvalidScenario, got %v", err)
		}
	})

	t.Run("runs a scenario", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, output := newTestRunner(t, deezer, RunnerOpts{})

		if err := run(runner, "pl_mix"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		targets := models.FilterByTitle(deezer.Playlists, "Mix")
		if len(targets) != 1 {
			t.Fatalf("expected one Mix playlist, got %d", len(targets))
		}
		got := deezer.PlaylistTracks(targets[0].ID)
		slices.Sort(got)
		if !slices.Equal(got, []int64{1, 2, 3, 4}) {
			t.Errorf("expected tracks 1-4, got %v", got)
		}
		if !strings.HasPrefix(targets[0].Description, "Reset ") {
			t.Errorf("expected reset description, got %q", targets[0].Description)
		}

		for _, want := range []string{"✓ pl_mix complete", "Created playlist: Mix", "Tracks added: 4"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in %q", want, output.String())
			}
		}
	})

	t.Run("missing source fails", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, _ := newTestRunner(t, deezer, RunnerOpts{})

		err := run(runner, "1")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), `"Blues"`) {
			t.Errorf("expected missing title in error, got %v", err)
		}
		if deezer.RequestCount(http.MethodGet, "/playlist/1/tracks") != 0 {
			t.Error("expected no source tracks to be fetched")
		}
	})
}

func TestAuthAction(t *testing.T) {
	t.Run("valid token prints the user", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		authorizer := &stubAuthorizer{}
		runner, output := newTestRunner(t, deezer, RunnerOpts{Authorizer: authorizer})

		if err := run(runner, "auth"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "User: tester (ID: 42)") {
			t.Errorf("expected user in output, got %q", output.String())
		}
		if authorizer.calls != 0 {
			t.Errorf("expected no authorization, got %d", authorizer.calls)
		}
	})

	t.Run("rejected token is renewed and saved", func(t *testing.T) {
		deezer := newDeezer(t, "fresh")
		connect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			if r.Form.Get("code") != "abc" {
				w.Write([]byte(`{}`))
				return
			}
			w.Write([]byte(`{"access_token": "fresh", "expires": 3600}`))
		}))
		t.Cleanup(connect.Close)

		authorizer := &stubAuthorizer{code: "abc"}
		runner, output := newTestRunner(t, deezer, RunnerOpts{Authorizer: authorizer, ConnectURL: connect.URL})

		if err := run(runner, "auth"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if authorizer.calls != 1 {
			t.Errorf("expected one authorization, got %d", authorizer.calls)
		}
		if got := runner.store.Get(shared.SectionAuth, "token"); got != "fresh" {
			t.Errorf("expected saved token fresh, got %q", got)
		}
		if !strings.Contains(output.String(), "new token saved") {
			t.Errorf("expected renewal notice, got %q", output.String())
		}
	})
}

func TestLibraryActions(t *testing.T) {
	t.Run("playlists as text", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, output := newTestRunner(t, deezer, RunnerOpts{})

		if err := run(runner, "playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Jazz", "Rock", "Total: 2 playlists"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in %q", want, output.String())
			}
		}
	})

	t.Run("playlists as JSON", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, output := newTestRunner(t, deezer, RunnerOpts{})

		if err := run(runner, "playlists", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var playlists []models.Playlist
		if err := json.Unmarshal(output.Bytes(), &playlists); err != nil {
			t.Fatalf("expected JSON output, got %v: %q", err, output.String())
		}
		if len(playlists) != 2 || playlists[0].Title != "Jazz" {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})

	t.Run("playlists as CSV", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, output := newTestRunner(t, deezer, RunnerOpts{})

		if err := run(runner, "playlists", "--csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 3 {
			t.Errorf("expected header and 2 rows, got %q", output.String())
		}
	})

	t.Run("tracks of a playlist", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, output := newTestRunner(t, deezer, RunnerOpts{})

		if err := run(runner, "tracks", "Rock"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Playlist: Rock", "Tracks: 2", "track 3", "track 4"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in %q", want, output.String())
			}
		}
	})

	t.Run("playlists with both formats", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "playlists", "--json", "--csv"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("tracks without a title", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, RunnerOpts{})

		if err := run(runner, "tracks"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("tracks of an unknown playlist", func(t *testing.T) {
		deezer := newDeezer(t, "good")
		runner, _ := newTestRunner(t, deezer, RunnerOpts{})

		if err := run(runner, "tracks", "Blues"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}
