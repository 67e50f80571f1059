package prtg

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/config"
	"github.com/s0up4200/prtgctl/historic"
	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/status"
)

const defaultTimeout = 30 * time.Second

// Client represents a PRTG API client
type Client struct {
	baseURL    string
	auth       url.Values
	readOnly   bool
	httpClient *http.Client
	logger     zerolog.Logger
	userAgent  string
	builder    *RequestBuilder
	decoder    *models.Decoder
	gate       *historic.Gate
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a client from resolved settings. No request is sent.
func NewClient(settings config.Settings, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if settings.URL == "" {
		return nil, apierr.New(apierr.Validation, "PRTG URL is required")
	}
	if settings.Credential.Active() == "" {
		return nil, apierr.New(apierr.Validation, "PRTG API credentials are required")
	}

	o := &clientOptions{
		timeout:    settings.Timeout,
		maxRetries: settings.Retries,
		retryDelay: settings.RetryDelay,
		userAgent:  "prtgctl",
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	if o.retryDelay <= 0 {
		o.retryDelay = time.Second
	}

	httpClient := o.httpClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if !settings.VerifyTLS {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opted in with --no-verify-ssl
		}
		httpClient = &http.Client{Timeout: o.timeout, Transport: transport}
	}

	gate := o.gate
	if gate == nil {
		gate = historic.NewGate(historic.FailFast)
	}

	codec := status.NewCodec(logger)
	return &Client{
		baseURL:    config.NormalizeURL(settings.URL),
		auth:       settings.Credential.Params(),
		readOnly:   settings.Credential.IsReadOnly(),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  o.userAgent,
		builder:    NewRequestBuilder(codec, logger),
		decoder:    models.NewDecoder(codec),
		gate:       gate,
		maxRetries: o.maxRetries,
		retryDelay: o.retryDelay,
	}, nil
}

// doRequest performs a GET with retries when they are enabled.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.maxRetries == 0 {
		return c.do(ctx, endpoint, params)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.MaxInterval = 30 * time.Second

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		body, err := c.do(ctx, endpoint, params)
		if err != nil && !apierr.Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Dur("wait", wait).Msg("Request failed, retrying")
		}),
	)
	if err != nil && apierr.KindOf(err) == apierr.Unclassified {
		return nil, classifyTransport(err, c.baseURL)
	}
	return body, err
}

// do performs a single authenticated GET.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	for k, v := range c.auth {
		query[k] = v
	}
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.Validation, err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json, text/csv, */*")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("params", params.Encode()).
		Msg("Making PRTG API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err, c.baseURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err, c.baseURL)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("PRTG API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyResponse(resp.StatusCode, body)
	}
	return body, nil
}

// table is a decoded table.json response.
type table struct {
	Version  string
	TreeSize int
	Records  []models.Record
}

func decodeTable(body []byte, content models.ContentType) (*table, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apierr.Wrap(apierr.ServerError, err, "invalid JSON in table response")
	}

	t := &table{}
	if v, ok := raw["prtg-version"]; ok {
		_ = json.Unmarshal(v, &t.Version)
	}
	if v, ok := raw["treesize"]; ok {
		_ = json.Unmarshal(v, &t.TreeSize)
	}

	rows, ok := raw[string(content)]
	if !ok {
		return t, nil
	}
	dec := json.NewDecoder(bytes.NewReader(rows))
	dec.UseNumber()
	if err := dec.Decode(&t.Records); err != nil {
		return nil, apierr.Wrap(apierr.ServerError, err, "invalid %s list in table response", content.Singular())
	}
	return t, nil
}

func (c *Client) fetchTable(ctx context.Context, q Query) (*table, *Request, error) {
	req, err := c.builder.Build(q)
	if err != nil {
		return nil, nil, err
	}
	body, err := c.doRequest(ctx, req.Endpoint, req.Params)
	if err != nil {
		return nil, nil, err
	}
	t, err := decodeTable(body, q.Content)
	if err != nil {
		return nil, nil, err
	}
	return t, req, nil
}

// List returns the records matching q, after client-side filtering. Status
// and priority values are normalized.
func (c *Client) List(ctx context.Context, q Query) ([]models.Record, error) {
	t, req, err := c.fetchTable(ctx, q)
	if err != nil {
		return nil, err
	}

	recs := c.decoder.Normalize(q.Content, req.Apply(t.Records))
	c.logger.Debug().
		Str("content", string(q.Content)).
		Int("received", len(t.Records)).
		Int("kept", len(recs)).
		Int("treesize", t.TreeSize).
		Msg("Listed objects")
	return recs, nil
}

// Get returns one object by id.
func (c *Client) Get(ctx context.Context, content models.ContentType, id string, columns []string) (models.Record, error) {
	id, err := cleanID(id)
	if err != nil {
		return nil, err
	}
	count := 1
	t, _, err := c.fetchTable(ctx, Query{Content: content, Columns: columns, ObjID: id, Count: &count})
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr.WithID(id)
		}
		return nil, err
	}
	if len(t.Records) == 0 {
		return nil, apierr.New(apierr.NotFound, "%s not found", content.Singular()).WithID(id)
	}
	return c.decoder.Normalize(content, t.Records[:1])[0], nil
}

// Ping checks connectivity and credentials and returns the server version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	count := 1
	t, _, err := c.fetchTable(ctx, Query{Content: models.Groups, Columns: []string{"objid"}, Count: &count})
	if err != nil {
		return "", err
	}
	return t.Version, nil
}

// ReadOnly reports whether the client only holds a read-only token.
func (c *Client) ReadOnly() bool {
	return c.readOnly
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
