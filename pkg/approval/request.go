package approval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Login payload types. The QR form carries app_id; the push form carries a
// session id instead of a temp token.
const (
	PayloadTypeLogin        = "tni-bouquet-login"
	PayloadTypeLoginRequest = "login_request"
)

// Request is a transient login-approval request from a QR code or a push.
type Request struct {
	Email     string
	TempToken string
	AppID     string
	AppName   string
	Timestamp time.Time
	// ExpiresAt is zero when the payload carried no expiry.
	ExpiresAt time.Time
}

// Expired reports whether the request carries an expiry that has passed.
func (r *Request) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

type loginPayload struct {
	Type       string          `json:"type"`
	Email      string          `json:"email"`
	TempToken  string          `json:"temp_token"`
	SessionID  string          `json:"session_id"`
	AppID      string          `json:"app_id"`
	AppIDCamel string          `json:"appId"`
	AppName    string          `json:"app_name"`
	Timestamp  json.RawMessage `json:"timestamp"`
	ExpiresAt  string          `json:"expires_at"`
}

// ParseLoginPayload decodes a login QR or push payload. A missing timestamp
// defaults to now.
func ParseLoginPayload(data []byte) (*Request, error) {
	return parseLoginPayload(data, time.Now())
}

func parseLoginPayload(data []byte, now time.Time) (*Request, error) {
	var p loginPayload
	if err := json.Unmarshal(bytes.TrimSpace(data), &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if p.Type != PayloadTypeLogin && p.Type != PayloadTypeLoginRequest {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidPayload, p.Type)
	}

	req := &Request{
		Email:     strings.TrimSpace(p.Email),
		TempToken: p.TempToken,
		AppID:     p.AppID,
		AppName:   p.AppName,
		Timestamp: now,
	}
	if req.TempToken == "" {
		req.TempToken = p.SessionID
	}
	if req.AppID == "" {
		req.AppID = p.AppIDCamel
	}

	switch {
	case req.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalidPayload)
	case req.TempToken == "":
		return nil, fmt.Errorf("%w: temp_token is required", ErrInvalidPayload)
	case p.Type == PayloadTypeLogin && req.AppID == "":
		return nil, fmt.Errorf("%w: app_id is required", ErrInvalidPayload)
	}

	if ts, ok, err := parseMillis(p.Timestamp); err != nil {
		return nil, err
	} else if ok {
		req.Timestamp = ts
	}
	if p.ExpiresAt != "" {
		exp, err := time.Parse(time.RFC3339, p.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("%w: expires_at: %w", ErrInvalidPayload, err)
		}
		req.ExpiresAt = exp
	}
	return req, nil
}

// parseMillis accepts epoch milliseconds as a JSON number or numeric string.
func parseMillis(raw json.RawMessage) (time.Time, bool, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: timestamp: %w", ErrInvalidPayload, err)
	}
	return time.UnixMilli(int64(ms)), true, nil
}
