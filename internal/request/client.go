package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/five82/albumdeck/internal/state"
)

// DefaultBaseURL is the albums API origin used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8081"

// Factory builds Clients that share one store, transport and base URL.
type Factory struct {
	store   *state.Store
	baseURL string
	http    *http.Client
	logger  *log.Logger
	rc      *resty.Client
}

// Option configures a Factory.
type Option func(*Factory)

// WithBaseURL overrides DefaultBaseURL. The value should already be
// normalized with ParseBaseURL.
func WithBaseURL(base string) Option {
	return func(f *Factory) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			f.baseURL = trimmed
		}
	}
}

// WithHTTPClient swaps the underlying net/http client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Factory) {
		if hc != nil {
			f.http = hc
		}
	}
}

// WithLogger routes debug output to logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory returns a Factory writing into store.
func NewFactory(store *state.Store, opts ...Option) *Factory {
	f := &Factory{
		store:   store,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.rc = resty.NewWithClient(f.http).
		SetBaseURL(f.baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetLogger(f.logger).
		SetDisableWarn(true)
	return f
}

// BaseURL returns the origin every Client from this factory targets.
func (f *Factory) BaseURL() string {
	return f.baseURL
}

// Store returns the store the factory's clients write into.
func (f *Factory) Store() *state.Store {
	return f.store
}

// New returns a Client bound to the resource path.
func (f *Factory) New(path string) *Client {
	return &Client{
		factory: f,
		path:    strings.TrimLeft(strings.TrimSpace(path), "/"),
	}
}

// Client issues JSON requests against a single resource path and mirrors the
// outcome into the shared store.
type Client struct {
	factory *Factory
	path    string
}

// New is shorthand for NewFactory(store, opts...).New(path).
func New(store *state.Store, path string, opts ...Option) *Client {
	return NewFactory(store, opts...).New(path)
}

// Path returns the resource path.
func (c *Client) Path() string {
	return c.path
}

// URL returns the absolute address requests are sent to.
func (c *Client) URL() string {
	return c.factory.baseURL + "/" + c.path
}

// Get calls the resource with GET. params are never sent.
func (c *Client) Get(ctx context.Context, params any) (*Response, error) {
	return c.Call(ctx, params, MethodGet)
}

// Post calls the resource with POST.
func (c *Client) Post(ctx context.Context, params any) (*Response, error) {
	return c.Call(ctx, params, MethodPost)
}

// Put calls the resource with PUT.
func (c *Client) Put(ctx context.Context, params any) (*Response, error) {
	return c.Call(ctx, params, MethodPut)
}

// Patch calls the resource with PATCH.
func (c *Client) Patch(ctx context.Context, params any) (*Response, error) {
	return c.Call(ctx, params, MethodPatch)
}

// Delete calls the resource with DELETE.
func (c *Client) Delete(ctx context.Context, params any) (*Response, error) {
	return c.Call(ctx, params, MethodDelete)
}

// Call performs one request.
//
// The store's errors and messages are cleared and the in-flight flag raised
// before anything else happens. Non-GET requests carry params as a JSON body
// when params is non-nil. Once the reply is parsed the flag is lowered and,
// in the same store update, a truthy errors field replaces the store errors
// and a truthy message field replaces the store messages. The parsed Response
// is returned even when it carries errors. The flag is lowered on every
// return path.
//
// When another Call began after this one, the flag and the errors/messages
// belong to the newer call and this one leaves the store alone.
func (c *Client) Call(ctx context.Context, params any, method Method) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store := c.factory.store
	logger := c.factory.logger.With("call", uuid.NewString(), "method", method.String(), "path", c.path)

	token := store.BeginCall()
	completed := false
	defer func() {
		if !completed {
			store.FinishCall(token)
		}
	}()

	req := c.factory.rc.R().SetContext(ctx)
	if method.carriesBody() && !isAbsent(params) {
		body, err := json.Marshal(params)
		if err != nil {
			observe(method, outcomeEncodeError)
			return nil, &EncodeError{Method: method, Err: err}
		}
		req.SetBody(body)
	}

	logger.Debug("request started")
	res, err := req.Execute(method.String(), "/"+c.path)
	if err != nil {
		observe(method, outcomeTransportError)
		logger.Debug("request failed", "err", err)
		return nil, &TransportError{Method: method, URL: c.URL(), Err: err}
	}

	resp, err := parseResponse(res.StatusCode(), res.Body())
	if err != nil {
		observe(method, outcomeParseError)
		if pe, ok := err.(*ParseError); ok {
			pe.Method = method
			pe.URL = c.URL()
		}
		logger.Debug("response not JSON", "status", res.StatusCode(), "err", err)
		return nil, err
	}

	completed = true
	applied := store.CompleteCall(token, state.CallResult{
		Errors:     resp.Errors,
		HasErrors:  resp.HasErrors,
		Message:    resp.Message,
		HasMessage: resp.HasMessage,
	})
	if !applied {
		resp.Superseded = true
		observe(method, outcomeSuperseded)
		logger.Debug("response superseded", "status", resp.StatusCode)
		return resp, nil
	}

	if resp.HasErrors {
		observe(method, outcomeRejected)
	} else {
		observe(method, outcomeOK)
	}
	logger.Debug("request finished", "status", resp.StatusCode, "errors", len(resp.Errors))
	return resp, nil
}

// isAbsent treats nil and typed nil pointers, maps, slices and interfaces as
// no parameters. Empty but non-nil values are still sent.
func isAbsent(params any) bool {
	if params == nil {
		return true
	}
	v := reflect.ValueOf(params)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// ParseBaseURL normalizes a configured origin such as "localhost:8081" or
// "https://api.example.com/v1/" into "scheme://host[/path]" without a
// trailing slash. Only http and https are accepted.
func ParseBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("base url %q: missing host", raw)
	}
	if strings.HasSuffix(u.Host, ":") {
		return "", fmt.Errorf("base url %q: missing port", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}
