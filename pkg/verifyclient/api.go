package verifyclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/signature"
)

// VerifyRequest is one login approval to submit.
type VerifyRequest struct {
	Email     string
	TempToken string
	Method    string
	// TOTPCode is sent only when non-empty.
	TOTPCode string
}

type verifyBody struct {
	Email            string           `json:"email"`
	AppID            string           `json:"app_id"`
	AuthMethod       string           `json:"auth_method"`
	AuthToken        string           `json:"auth_token"`
	TempToken        string           `json:"temp_token"`
	VerificationData verificationData `json:"verification_data"`
	TOTPCode         string           `json:"totp_code,omitempty"`
}

// VerifyLogin signs the chosen method and submits the approval.
func (c *Client) VerifyLogin(ctx context.Context, r VerifyRequest) Result {
	const fallback = "Failed to verify authentication"
	if err := c.ready(); err != nil {
		return failure(fallback, 0, err)
	}

	sig, err := c.sign(r.Method)
	if err != nil {
		return failure(fallback, 0, errors.Join(ErrInvalidConfig, err))
	}

	res := c.do(ctx, http.MethodPost, PathVerify, nil, verifyBody{
		Email:            r.Email,
		AppID:            c.cfg.AppID,
		AuthMethod:       r.Method,
		AuthToken:        signature.AuthToken(sig),
		TempToken:        r.TempToken,
		VerificationData: newVerificationData(sig),
		TOTPCode:         r.TOTPCode,
	}, fallback)

	attrs := []any{logger.Email(r.Email), logger.Method(r.Method)}
	if res.Success {
		c.log.InfoContext(ctx, "login verified", attrs...)
	} else {
		c.log.WarnContext(ctx, "login verification failed", append(attrs, logger.Error(res.Err))...)
	}
	return res
}

type syncBody struct {
	AppID            string           `json:"app_id"`
	Methods          []string         `json:"methods"`
	VerificationData verificationData `json:"verification_data"`
}

// SyncMethods reports the enabled auth methods to the server.
func (c *Client) SyncMethods(ctx context.Context, methods []string) Result {
	const fallback = "Failed to sync methods"
	if err := c.ready(); err != nil {
		return failure(fallback, 0, err)
	}

	sig, err := c.sign("sync")
	if err != nil {
		return failure(fallback, 0, errors.Join(ErrInvalidConfig, err))
	}
	if methods == nil {
		methods = []string{}
	}
	return c.do(ctx, http.MethodPost, PathSyncMethods, nil, syncBody{
		AppID:            c.cfg.AppID,
		Methods:          methods,
		VerificationData: newVerificationData(sig),
	}, fallback)
}

// PendingRequest is a login waiting for approval on the server.
type PendingRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	AppID     string `json:"app_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// PendingRequests lists logins awaiting approval for email. The decoded
// requests are returned alongside the raw Result.
func (c *Client) PendingRequests(ctx context.Context, email string) ([]PendingRequest, Result) {
	const fallback = "Failed to get pending requests"
	if err := c.ready(); err != nil {
		return nil, failure(fallback, 0, err)
	}

	q := url.Values{}
	q.Set("email", email)
	q.Set("app_id", c.cfg.AppID)
	q.Set("app_secret", c.cfg.Secret)

	res := c.do(ctx, http.MethodGet, PathPending, q, nil, fallback)
	if !res.Success || len(res.Data) == 0 {
		return nil, res
	}

	var pending []PendingRequest
	if err := json.Unmarshal(res.Data, &pending); err != nil {
		res.Success = false
		res.Message = fallback
		res.Err = errors.Join(ErrInvalidResponse, err)
		return nil, res
	}
	return pending, res
}

type approveBody struct {
	SessionID        string           `json:"session_id"`
	AuthMethod       string           `json:"auth_method"`
	DeviceSignature  string           `json:"device_signature"`
	VerificationData verificationData `json:"verification_data"`
}

// ApproveRequest approves a pending session with the given method.
func (c *Client) ApproveRequest(ctx context.Context, sessionID, method string) Result {
	const fallback = "Failed to approve authentication"
	if err := c.ready(); err != nil {
		return failure(fallback, 0, err)
	}

	sig, err := c.sign(method)
	if err != nil {
		return failure(fallback, 0, errors.Join(ErrInvalidConfig, err))
	}
	return c.do(ctx, http.MethodPost, PathApprove, nil, approveBody{
		SessionID:        sessionID,
		AuthMethod:       method,
		DeviceSignature:  sig.Signature,
		VerificationData: newVerificationData(sig),
	}, fallback)
}

// RejectRequest rejects a pending session.
func (c *Client) RejectRequest(ctx context.Context, sessionID string) Result {
	const fallback = "Failed to reject authentication"
	if err := c.ready(); err != nil {
		return failure(fallback, 0, err)
	}
	return c.do(ctx, http.MethodPost, PathReject, nil, map[string]string{"session_id": sessionID}, fallback)
}
