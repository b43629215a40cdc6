package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"notebook-console/pkg/jwt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const MergePatchJSON = "application/merge-patch+json"

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Token      string
	Username   string
	Password   string
	RememberMe bool
	AppName    string
	Logger     zerolog.Logger
	// Transport replaces the default round tripper, mainly for tests.
	Transport http.RoundTripper
}

// Client talks to the notebook REST API. It is safe for concurrent use;
// every browser session shares the same client and bearer token.
type Client struct {
	http    *resty.Client
	appName string
	logger  zerolog.Logger

	username   string
	password   string
	rememberMe bool

	mu     sync.RWMutex
	token  string
	claims *jwt.Claims
	now    func() time.Time
}

type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	ContentType string
	// Result receives the decoded JSON body of a successful response.
	Result any
}

type Response struct {
	Status int
	Header http.Header
	Alert  *Alert
}

// Alert is the notification the API attaches to successful writes,
// e.g. key "notebookApp.note.created" with the record id as param.
type Alert struct {
	Key   string `json:"key"`
	Param string `json:"param,omitempty"`
}

func New(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	if cfg.Transport != nil {
		httpClient.SetTransport(cfg.Transport)
	}

	c := &Client{
		http:       httpClient,
		appName:    cfg.AppName,
		logger:     cfg.Logger,
		username:   cfg.Username,
		password:   cfg.Password,
		rememberMe: cfg.RememberMe,
		now:        time.Now,
	}

	if cfg.Token != "" {
		c.SetToken(cfg.Token)
	}

	return c
}

// Do performs one request. Transport failures and non-2xx statuses are
// returned as *APIError; nothing is retried.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	r := c.http.R().
		SetContext(ctx).
		SetError(&Problem{})

	if token := c.Token(); token != "" {
		r.SetAuthToken(token)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		r.SetHeader("Content-Type", contentType).SetBody(req.Body)
	}
	if req.Result != nil {
		r.SetResult(req.Result)
	}

	start := c.now()
	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("api request failed")
		return nil, &APIError{Method: req.Method, Path: req.Path, Err: err}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", c.now().Sub(start)).
		Msg("api request")

	if resp.IsError() {
		return nil, c.newAPIError(req, resp)
	}

	return &Response{
		Status: resp.StatusCode(),
		Header: resp.Header(),
		Alert:  c.alert(resp.Header()),
	}, nil
}

func (c *Client) alert(h http.Header) *Alert {
	if c.appName == "" {
		return nil
	}
	key := h.Get("X-" + c.appName + "-alert")
	if key == "" {
		return nil
	}
	param, err := url.QueryUnescape(h.Get("X-" + c.appName + "-params"))
	if err != nil {
		param = h.Get("X-" + c.appName + "-params")
	}
	return &Alert{Key: key, Param: param}
}
