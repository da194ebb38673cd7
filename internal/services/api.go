// Deezer API client
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DeezerBaseURL    = "https://api.deezer.com"
	DefaultPageSize  = 500
	DefaultRateLimit = 10.0
)

// Mode selects how a response body is interpreted.
type Mode int

const (
	// Single returns the decoded object as is.
	Single Mode = iota
	// List unwraps the data array and follows next links.
	List
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case List:
		return "list"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

func (m Mode) valid() bool {
	return m == Single || m == List
}

// RequestError is the error envelope reported by Deezer.
type RequestError struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
}

func (e *RequestError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%v code %d: %s", shared.ErrAPIRequest, e.Code, e.Message)
	}
	return fmt.Sprintf("%v: %s", shared.ErrAPIRequest, e.Message)
}

func (e *RequestError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Response holds an interpreted Deezer response.
//
// Exactly one of Bool, Body or Items is set: Bool for literal boolean bodies,
// Body for [Single] requests and Items for [List] requests.
type Response struct {
	Bool  *bool
	Body  json.RawMessage
	Items []json.RawMessage
}

// IsBool reports whether the body was a boolean literal.
func (r *Response) IsBool() bool {
	return r.Bool != nil
}

// True reports whether the body was the literal true.
func (r *Response) True() bool {
	return r.Bool != nil && *r.Bool
}

// Decode unmarshals a [Single] body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("%w: no object in response", shared.ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DecodeItems unmarshals every item of a [List] response.
func DecodeItems[T any](r *Response) ([]T, error) {
	items := make([]T, 0, len(r.Items))
	for i, raw := range r.Items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

type envelope struct {
	Error *RequestError   `json:"error"`
	Data  json.RawMessage `json:"data"`
	Next  string          `json:"next"`
}

// APIOpts configures an [APIService].
type APIOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	PageSize   int
	RateLimit  float64 // requests per second
	Logger     *log.Logger
}

// APIService provides methods for making requests to the Deezer API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	pageSize   int
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewAPIService creates a new API client, filling unset options with defaults.
func NewAPIService(opts APIOpts) *APIService {
	if opts.BaseURL == "" {
		opts.BaseURL = DeezerBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	burst := max(int(opts.RateLimit), 1)
	return &APIService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		pageSize:   opts.PageSize,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), burst),
		logger:     opts.Logger,
	}
}

// Get performs a GET request with params in the query string.
func (a *APIService) Get(ctx context.Context, path string, mode Mode, params url.Values) (*Response, error) {
	return a.do(ctx, http.MethodGet, path, mode, params)
}

// Post performs a POST request with params as a form encoded body.
func (a *APIService) Post(ctx context.Context, path string, mode Mode, params url.Values) (*Response, error) {
	return a.do(ctx, http.MethodPost, path, mode, params)
}

// Delete performs a DELETE request with params in the query string.
func (a *APIService) Delete(ctx context.Context, path string, mode Mode, params url.Values) (*Response, error) {
	return a.do(ctx, http.MethodDelete, path, mode, params)
}

// GetURL performs a GET request against a fully qualified URL, such as a next page link.
func (a *APIService) GetURL(ctx context.Context, rawURL string, mode Mode) (*Response, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: unknown mode %v", shared.ErrClientMisuse, mode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := a.send(req)
	if err != nil {
		return nil, err
	}
	return a.prepare(ctx, body, mode)
}

func (a *APIService) do(ctx context.Context, method, path string, mode Mode, params url.Values) (*Response, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: unknown mode %v", shared.ErrClientMisuse, mode)
	}

	values := a.withDefaults(params)
	target := a.baseURL + path

	var body io.Reader
	switch method {
	case http.MethodPost:
		body = strings.NewReader(values.Encode())
	default:
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	raw, err := a.send(req)
	if err != nil {
		return nil, err
	}
	return a.prepare(ctx, raw, mode)
}

// withDefaults copies params and adds the access token and page size unless already present.
func (a *APIService) withDefaults(params url.Values) url.Values {
	values := make(url.Values, len(params)+2)
	for k, v := range params {
		values[k] = append([]string(nil), v...)
	}

	if !values.Has("access_token") {
		token := ""
		if a.tokens != nil {
			token = a.tokens.Token()
		}
		values.Set("access_token", token)
	}
	if !values.Has("limit") {
		values.Set("limit", strconv.Itoa(a.pageSize))
	}
	return values
}

func (a *APIService) send(req *http.Request) ([]byte, error) {
	if err := a.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	a.logger.Debug("deezer request", "method", req.Method, "path", req.URL.Path)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	a.logger.Debug("deezer response", "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func (a *APIService) prepare(ctx context.Context, body []byte, mode Mode) (*Response, error) {
	body = bytes.TrimSpace(body)

	if len(body) > 0 && (body[0] == 't' || body[0] == 'f') {
		var flag bool
		if err := json.Unmarshal(body, &flag); err == nil {
			return &Response{Bool: &flag}, nil
		}
	}
	if bytes.Equal(body, []byte("null")) {
		return nil, fmt.Errorf("%w: null response body", shared.ErrUnexpectedResponse)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Error != nil {
		return nil, env.Error
	}

	switch mode {
	case Single:
		return &Response{Body: json.RawMessage(body)}, nil
	case List:
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, fmt.Errorf("%w: response has no data array", shared.ErrUnexpectedResponse)
		}

		var items []json.RawMessage
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, fmt.Errorf("%w: data is not an array", shared.ErrUnexpectedResponse)
		}

		if env.Next != "" {
			next, err := a.GetURL(ctx, env.Next, List)
			if err != nil {
				return nil, err
			}
			items = append(items, next.Items...)
		}
		return &Response{Items: items}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %v", shared.ErrClientMisuse, mode)
	}
}
