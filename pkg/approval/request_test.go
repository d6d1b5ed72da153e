package approval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/approval"
)

func TestParseLoginPayload(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
		want approval.Request
	}{
		{
			name: "qr with numeric timestamp",
			data: `{"type":"tni-bouquet-login","email":"a@b.com","temp_token":"tmp","app_id":"app_42","timestamp":1700000000000}`,
			want: approval.Request{Email: "a@b.com", TempToken: "tmp", AppID: "app_42", Timestamp: time.UnixMilli(1700000000000)},
		},
		{
			name: "string timestamp and camel case app id",
			data: `{"type":"tni-bouquet-login","email":" a@b.com ","temp_token":"tmp","appId":"app_42","timestamp":"1700000000000"}`,
			want: approval.Request{Email: "a@b.com", TempToken: "tmp", AppID: "app_42", Timestamp: time.UnixMilli(1700000000000)},
		},
		{
			name: "push with session id and expiry",
			data: `{"type":"login_request","email":"a@b.com","session_id":"sess","app_name":"ACME","expires_at":"2023-11-14T22:18:20Z","timestamp":1700000000000}`,
			want: approval.Request{
				Email: "a@b.com", TempToken: "sess", AppName: "ACME",
				Timestamp: time.UnixMilli(1700000000000),
				ExpiresAt: time.Date(2023, 11, 14, 22, 18, 20, 0, time.UTC),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := approval.ParseLoginPayload([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want.Email, got.Email)
			assert.Equal(t, tt.want.TempToken, got.TempToken)
			assert.Equal(t, tt.want.AppID, got.AppID)
			assert.Equal(t, tt.want.AppName, got.AppName)
			assert.True(t, tt.want.Timestamp.Equal(got.Timestamp))
			assert.True(t, tt.want.ExpiresAt.Equal(got.ExpiresAt))
		})
	}
}

func TestParseLoginPayload_DefaultTimestamp(t *testing.T) {
	t.Parallel()
	before := time.Now()
	got, err := approval.ParseLoginPayload([]byte(`{"type":"tni-bouquet-login","email":"a@b.com","temp_token":"tmp","app_id":"x"}`))
	require.NoError(t, err)
	assert.False(t, got.Timestamp.Before(before.Truncate(time.Millisecond)))
	assert.True(t, got.ExpiresAt.IsZero())
	assert.False(t, got.Expired(time.Now()))
}

func TestParseLoginPayload_Invalid(t *testing.T) {
	t.Parallel()
	for name, data := range map[string]string{
		"not json":       `otpauth://totp/x?secret=JBSWY3DPEHPK3PXP`,
		"setup payload":  `{"type":"tni-bouquet-account","email":"a@b.com","temp_token":"t","app_id":"x"}`,
		"missing email":  `{"type":"tni-bouquet-login","temp_token":"t","app_id":"x"}`,
		"missing token":  `{"type":"tni-bouquet-login","email":"a@b.com","app_id":"x"}`,
		"missing app id": `{"type":"tni-bouquet-login","email":"a@b.com","temp_token":"t"}`,
		"bad timestamp":  `{"type":"tni-bouquet-login","email":"a@b.com","temp_token":"t","app_id":"x","timestamp":"soon"}`,
		"bad expiry":     `{"type":"login_request","email":"a@b.com","session_id":"s","expires_at":"tomorrow"}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := approval.ParseLoginPayload([]byte(data))
			assert.ErrorIs(t, err, approval.ErrInvalidPayload)
		})
	}
}
