package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func AccountID(id string) slog.Attr {
	return nonEmpty("account_id", id)
}

func AppID(id string) slog.Attr {
	return nonEmpty("app_id", id)
}

// Method records an authentication method under "auth_method".
func Method(m string) slog.Attr {
	return nonEmpty("auth_method", m)
}

// Tier records the matching tier that resolved a login request.
func Tier(tier string) slog.Attr {
	return nonEmpty("match_tier", tier)
}

// State records a flow state under "state".
func State(state string) slog.Attr {
	return nonEmpty("state", state)
}

// Email records an address with the local part masked: "alice@example.com"
// becomes "a***@example.com". Values without "@" are masked entirely.
func Email(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("email", MaskEmail(addr))
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func nonEmpty(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
