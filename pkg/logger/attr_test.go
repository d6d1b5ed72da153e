package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Len(t, attr.Value.Group(), 2)
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal any
	}{
		{name: "account", attr: logger.AccountID("acc_1"), wantKey: "account_id", wantVal: "acc_1"},
		{name: "app", attr: logger.AppID("app"), wantKey: "app_id", wantVal: "app"},
		{name: "method", attr: logger.Method("pin"), wantKey: "auth_method", wantVal: "pin"},
		{name: "tier", attr: logger.Tier("strict"), wantKey: "match_tier", wantVal: "strict"},
		{name: "state", attr: logger.State("approved"), wantKey: "state", wantVal: "approved"},
		{name: "status", attr: logger.StatusCode(502), wantKey: "status_code", wantVal: int64(502)},
		{name: "duration", attr: logger.Duration(time.Second), wantKey: "duration", wantVal: time.Second},
		{name: "component", attr: logger.Component("registry"), wantKey: "component", wantVal: "registry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantKey, tt.attr.Key)
			assert.Equal(t, tt.wantVal, tt.attr.Value.Any())
		})
	}

	assert.True(t, logger.AccountID("").Equal(slog.Attr{}))
	assert.True(t, logger.Email("").Equal(slog.Attr{}))
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a***@example.com", logger.MaskEmail("alice@example.com"))
	assert.Equal(t, "***", logger.MaskEmail("alice"))
	assert.Equal(t, "***", logger.MaskEmail("@example.com"))
	assert.Equal(t, "a***@example.com", logger.Email("alice@example.com").Value.String())
}
