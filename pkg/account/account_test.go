package account_test

import (
	"testing"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/totp"

	"github.com/stretchr/testify/assert"
)

func validAccount() account.Account {
	return account.Account{
		ID:     "acc",
		Issuer: "ACME",
		Label:  "alice@example.com",
		Secret: "JBSWY3DPEHPK3PXP",
		Digits: 6,
		Period: 30,
	}
}

func TestAccount_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(a *account.Account)
		wantErr error
	}{
		{name: "valid", mutate: func(a *account.Account) {}},
		{name: "eight digits", mutate: func(a *account.Account) { a.Digits = 8 }},
		{name: "bounds period", mutate: func(a *account.Account) { a.Period = 120 }},
		{name: "missing secret", mutate: func(a *account.Account) { a.Secret = "" }, wantErr: account.ErrValidation},
		{name: "bad secret", mutate: func(a *account.Account) { a.Secret = "NOT-BASE32!" }, wantErr: totp.ErrInvalidSecretFormat},
		{name: "five digits", mutate: func(a *account.Account) { a.Digits = 5 }, wantErr: account.ErrValidation},
		{name: "nine digits", mutate: func(a *account.Account) { a.Digits = 9 }, wantErr: account.ErrValidation},
		{name: "short period", mutate: func(a *account.Account) { a.Period = 14 }, wantErr: account.ErrValidation},
		{name: "long period", mutate: func(a *account.Account) { a.Period = 121 }, wantErr: account.ErrValidation},
		{name: "bad algorithm", mutate: func(a *account.Account) { a.Algorithm = "MD5" }, wantErr: account.ErrValidation},
		{name: "unknown method", mutate: func(a *account.Account) { a.AuthMethods = []account.Method{"face"} }, wantErr: account.ErrUnknownMethod},
		{name: "duplicate method", mutate: func(a *account.Account) {
			a.AuthMethods = []account.Method{account.MethodTOTP, account.MethodTOTP}
		}, wantErr: account.ErrValidation},
		{name: "preferred not enabled", mutate: func(a *account.Account) {
			a.PreferredAuthMethod = account.MethodPIN
		}, wantErr: account.ErrMethodNotEnabled},
		{name: "centralized without app id", mutate: func(a *account.Account) { a.IsCentralizedAuth = true }, wantErr: account.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := validAccount()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccount_Methods(t *testing.T) {
	t.Parallel()
	a := validAccount()
	assert.Equal(t, []account.Method{account.MethodTOTP}, a.EnabledMethods(), "no stored methods means TOTP only")
	assert.Equal(t, account.MethodTOTP, a.DefaultMethod())

	a.AuthMethods = []account.Method{account.MethodPIN, account.MethodTOTP}
	assert.Equal(t, account.MethodPIN, a.DefaultMethod())
	assert.True(t, a.HasMethod(account.MethodTOTP))
	assert.False(t, a.HasMethod(account.MethodPasskey))

	a.PreferredAuthMethod = account.MethodTOTP
	assert.Equal(t, account.MethodTOTP, a.DefaultMethod())

	// A stale preference is ignored
	a.PreferredAuthMethod = account.MethodBiometric
	assert.Equal(t, account.MethodPIN, a.DefaultMethod())
}

func TestAccount_MissingRemoteFields(t *testing.T) {
	t.Parallel()
	a := validAccount()
	assert.Equal(t, []string{"appId", "apiUrl"}, a.MissingRemoteFields())

	a.AppID = "app"
	a.APIURL = "https://auth.test"
	assert.Empty(t, a.MissingRemoteFields())

	a.Secret = ""
	assert.Equal(t, []string{"secret"}, a.MissingRemoteFields())
}

func TestValidateCentralized(t *testing.T) {
	t.Parallel()
	a := validAccount()
	a.AppID = "app"
	a.APIURL = "https://auth.test"
	assert.Empty(t, account.ValidateCentralized(&a))

	a.Label = "alice"
	a.Secret = "JBSWY3DP"
	a.APIURL = ""
	assert.Equal(t, []string{"Missing apiUrl", "Invalid or missing secret", "Invalid account email"}, account.ValidateCentralized(&a))
}

func TestParseMethod(t *testing.T) {
	t.Parallel()
	for _, m := range account.Methods {
		got, err := account.ParseMethod(string(m))
		assert.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := account.ParseMethod("sms")
	assert.ErrorIs(t, err, account.ErrUnknownMethod)
}

func TestMethod_CredentialKind(t *testing.T) {
	t.Parallel()
	for _, m := range []account.Method{account.MethodPIN, account.MethodPattern, account.MethodPasskey} {
		kind, ok := m.CredentialKind()
		assert.True(t, ok)
		assert.Equal(t, string(m), string(kind))
	}
	for _, m := range []account.Method{account.MethodTOTP, account.MethodBiometric, account.MethodScreenLock} {
		_, ok := m.CredentialKind()
		assert.False(t, ok)
	}
	assert.True(t, account.MethodScreenLock.RequiresCapability())
	assert.False(t, account.MethodPIN.RequiresCapability())
}
