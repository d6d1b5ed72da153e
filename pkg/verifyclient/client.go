package verifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/signature"
)

// API paths on the verification server.
const (
	PathVerify      = "/api/centralized-auth/verify"
	PathSyncMethods = "/api/centralized-auth/sync-methods"
	PathPending     = "/api/auth/pending"
	PathApprove     = "/api/auth/approve"
	PathReject      = "/api/auth/reject"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 64 * 1024

// Client talks to one centralized application's verification server.
// Zero value is not usable; use New to create instances.
type Client struct {
	cfg     Config
	http    *http.Client
	timeout time.Duration
	scheme  signature.Scheme
	log     *slog.Logger
	now     func() time.Time
}

// New validates cfg and returns a client bound to it.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: DefaultTimeout,
		scheme:  signature.SchemeLegacy,
		log:     logger.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("verifyclient"), logger.AppID(cfg.AppID))
	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Result is the normalized outcome of a remote call. Transport failures,
// timeouts, non-2xx statuses and success:false bodies all come back as
// Success=false with Err set; no call returns a separate error value for them.
type Result struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Token     string          `json:"token,omitempty"`
	ExpiresIn int             `json:"expiresIn,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`

	StatusCode int   `json:"-"`
	Err        error `json:"-"`
}

// verificationData is the structured copy of the device signature.
type verificationData struct {
	DeviceID  string `json:"device_id"`
	Timestamp string `json:"timestamp"`
	Signature string `json:"signature"`
}

func newVerificationData(sig signature.DeviceSignature) verificationData {
	return verificationData{DeviceID: sig.DeviceID, Timestamp: sig.Timestamp, Signature: sig.Signature}
}

func (c *Client) ready() error {
	if c == nil || c.http == nil || c.cfg.APIURL == "" {
		return ErrClientNotInitialized
	}
	return nil
}

func (c *Client) sign(method string) (signature.DeviceSignature, error) {
	return signature.Sign(c.cfg.DeviceID, method, c.cfg.Secret,
		signature.WithScheme(c.scheme), signature.WithClock(c.now))
}

// do performs one request and normalizes every failure into the Result.
// There are no retries; retrying is the caller's decision.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, fallback string) Result {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.cfg.APIURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return failure(fallback, 0, errors.Join(ErrInvalidConfig, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return failure(fallback, 0, errors.Join(ErrInvalidConfig, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mfakit-authenticator/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w: %w", ErrNetworkFailure, ErrTimeout, err)
		} else {
			err = fmt.Errorf("%w: %w", ErrNetworkFailure, err)
		}
		c.log.WarnContext(ctx, "verification request failed",
			slog.String("path", path), logger.Duration(time.Since(start)), logger.Error(err))
		return failure(fallback, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))

	var res Result
	decodeErr := json.Unmarshal(raw, &res)
	res.StatusCode = resp.StatusCode

	c.log.DebugContext(ctx, "verification request completed",
		slog.String("path", path), logger.StatusCode(resp.StatusCode), logger.Duration(time.Since(start)))

	switch {
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		res.Success = false
		res.Err = fmt.Errorf("%w: status %d", ErrRemoteRejection, resp.StatusCode)
	case decodeErr != nil:
		res = Result{StatusCode: resp.StatusCode, Err: errors.Join(ErrInvalidResponse, decodeErr)}
	case !res.Success:
		res.Err = ErrRemoteRejection
	}
	if res.Err != nil && res.Message == "" {
		res.Message = fallback
	}
	return res
}

func failure(message string, status int, err error) Result {
	return Result{Message: message, StatusCode: status, Err: err}
}
