// Deezer authorization code flow and token validation
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DeezerConnectURL = "https://connect.deezer.com"
	RedirectPath     = "/authfinish"
	Permissions      = "basic_access,manage_library,delete_library"

	authPath  = "/oauth/auth.php"
	tokenPath = "/oauth/access_token.php"
)

// AuthOpts configures an [AuthService].
type AuthOpts struct {
	Session    *Session
	API        *APIService
	Authorizer Authorizer
	ConnectURL string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// AuthService validates and refreshes the Deezer token held by a [Session].
type AuthService struct {
	session    *Session
	api        *APIService
	authorizer Authorizer
	connectURL string
	httpClient *http.Client
	logger     *log.Logger
}

// NewAuthService creates an authorization manager. The session must be the one the API client reads its token from.
func NewAuthService(opts AuthOpts) *AuthService {
	if opts.Session == nil {
		opts.Session = NewSession()
	}
	if opts.ConnectURL == "" {
		opts.ConnectURL = DeezerConnectURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.API == nil {
		opts.API = NewAPIService(APIOpts{Tokens: opts.Session, Logger: opts.Logger})
	}

	return &AuthService{
		session:    opts.Session,
		api:        opts.API,
		authorizer: opts.Authorizer,
		connectURL: strings.TrimRight(opts.ConnectURL, "/"),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// SetParameters stores the port, application credentials and token. Changing the token drops the cached user.
func (a *AuthService) SetParameters(port int, secret, appID, token string) {
	a.session.configure(port, secret, appID, token)
}

// Session returns the session the service writes to.
func (a *AuthService) Session() *Session {
	return a.session
}

// Token returns the current access token.
func (a *AuthService) Token() string {
	return a.session.Token()
}

// RedirectURL returns the local callback address registered with the Deezer application.
func (a *AuthService) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", a.session.Port(), RedirectPath)
}

func (a *AuthService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.session.AppID(),
		ClientSecret: a.session.Secret(),
		RedirectURL:  a.RedirectURL(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.connectURL + authPath,
			TokenURL:  a.connectURL + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthURL builds the consent page address.
func (a *AuthService) AuthURL() string {
	return a.oauthConfig().AuthCodeURL("",
		oauth2.SetAuthURLParam("app_id", a.session.AppID()),
		oauth2.SetAuthURLParam("perms", Permissions),
	)
}

// CheckToken asks Deezer for the current user.
//
// A Deezer error (expired or revoked token) yields false without error. A successful check caches the user.
func (a *AuthService) CheckToken(ctx context.Context) (bool, error) {
	resp, err := a.api.Get(ctx, "/user/me", Single, nil)

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		a.logger.Debug("token check rejected", "error", reqErr)
		return false, nil
	} else if err != nil {
		return false, err
	}

	if resp.IsBool() {
		return false, fmt.Errorf("%w: cannot check auth token", shared.ErrAuthFailed)
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return false, fmt.Errorf("%w: cannot check auth token: %v", shared.ErrAuthFailed, err)
	}
	if user.Type != "user" {
		return false, fmt.Errorf("%w: cannot check auth token", shared.ErrAuthFailed)
	}

	a.session.setUser(&user)
	return true, nil
}

// User returns the cached user, checking the token first if nothing is cached.
func (a *AuthService) User(ctx context.Context) (*models.User, error) {
	if user := a.session.User(); user != nil {
		return user, nil
	}

	ok, err := a.CheckToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot fetch user info due to failed token check", shared.ErrAuthFailed)
	}
	return a.session.User(), nil
}

// Authorize runs the interactive authorization code flow and stores the exchanged token.
func (a *AuthService) Authorize(ctx context.Context) error {
	if a.session.AppID() == "" || a.session.Secret() == "" {
		return fmt.Errorf("%w: app_id and secret are required", shared.ErrAuthFailed)
	}
	if a.authorizer == nil {
		return fmt.Errorf("%w: no authorizer configured", shared.ErrClientMisuse)
	}

	code, err := a.authorizer.AuthorizationCode(ctx, a.AuthURL(), a.session.Port())
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if code == "" {
		return fmt.Errorf("%w: empty authorization code", shared.ErrAuthFailed)
	}

	token, err := a.exchange(ctx, code)
	if err != nil {
		return err
	}

	a.session.setToken(token)
	a.logger.Info("obtained new token")
	return nil
}

func (a *AuthService) exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.oauthConfig().Exchange(ctx, code,
		oauth2.SetAuthURLParam("app_id", a.session.AppID()),
		oauth2.SetAuthURLParam("secret", a.session.Secret()),
		oauth2.SetAuthURLParam("output", "json"),
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get token from Deezer: %v", shared.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: failed to get token from Deezer", shared.ErrAuthFailed)
	}
	return token.AccessToken, nil
}

// EnsureToken checks the token and reauthorizes when Deezer rejects it.
//
// A fresh token must pass a second check before it is persisted to store. Reports whether a new token was obtained.
func (a *AuthService) EnsureToken(ctx context.Context, store TokenStore) (bool, error) {
	ok, err := a.CheckToken(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	a.logger.Warn("token rejected, starting authorization")
	if err := a.Authorize(ctx); err != nil {
		return false, err
	}

	ok, err = a.CheckToken(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: cannot verify new token", shared.ErrAuthFailed)
	}

	if store != nil {
		if err := store.Set(shared.SectionAuth, "token", a.Token()); err != nil {
			return true, fmt.Errorf("failed to save token: %w", err)
		}
	}
	return true, nil
}
