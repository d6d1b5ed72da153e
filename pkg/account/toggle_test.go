package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/kvstore"
)

func addLocal(t *testing.T, f *fixture, methods ...account.Method) *account.Account {
	t.Helper()
	d := localDraft("bob")
	d.AuthMethods = methods
	acc, err := f.reg.Add(context.Background(), d)
	require.NoError(t, err)
	return acc
}

func TestDisableMethod_LastMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, m := range []account.Method{account.MethodTOTP, account.MethodPIN, account.MethodBiometric} {
		t.Run(string(m), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			acc := addLocal(t, f, m)

			_, err := f.reg.DisableMethod(ctx, acc.ID, m)
			assert.ErrorIs(t, err, account.ErrLastMethod)

			got, err := f.reg.Get(ctx, acc.ID)
			require.NoError(t, err)
			assert.Equal(t, []account.Method{m}, got.AuthMethods, "methods never become empty")
		})
	}
}

func TestDisableMethod_TOTPWithOthers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f, account.MethodTOTP, account.MethodBiometric)

	got, err := f.reg.DisableMethod(ctx, acc.ID, account.MethodTOTP)
	require.NoError(t, err)
	assert.Equal(t, []account.Method{account.MethodBiometric}, got.AuthMethods)
}

func TestDisableMethod_DeletesCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		method account.Method
		setup  func(f *fixture, id string) error
	}{
		{method: account.MethodPIN, setup: func(f *fixture, id string) error { return f.creds.SetupPIN(ctx, id, "1234") }},
		{method: account.MethodPattern, setup: func(f *fixture, id string) error {
			return f.creds.SetupPattern(ctx, id, []credential.Point{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 1}}, 3)
		}},
		{method: account.MethodPasskey, setup: func(f *fixture, id string) error { return f.creds.CreatePasskey(ctx, id, "passkey!", "") }},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			acc := addLocal(t, f, account.MethodTOTP, tt.method)
			require.NoError(t, tt.setup(f, acc.ID))
			_, err := f.reg.SetPreferred(ctx, acc.ID, tt.method)
			require.NoError(t, err)

			got, err := f.reg.DisableMethod(ctx, acc.ID, tt.method)
			require.NoError(t, err)
			assert.Equal(t, []account.Method{account.MethodTOTP}, got.AuthMethods)
			assert.Empty(t, got.PreferredAuthMethod, "disabled preferred method clears the preference")

			kind, _ := tt.method.CredentialKind()
			ok, err := f.creds.Has(ctx, kind, acc.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

// accountWriteFailure fails writes to the account collection only.
type accountWriteFailure struct{ kvstore.Store }

func (s accountWriteFailure) Set(ctx context.Context, key string, value []byte) error {
	if key == account.StorageKey {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func TestDisableMethod_FailedWriteKeepsCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f, account.MethodTOTP, account.MethodPIN)
	require.NoError(t, f.creds.SetupPIN(ctx, acc.ID, "1234"))

	reg := account.NewRegistry(accountWriteFailure{f.kv}, account.WithCredentials(f.creds))
	_, err := reg.DisableMethod(ctx, acc.ID, account.MethodPIN)
	assert.ErrorIs(t, err, account.ErrStorage)

	got, err := f.reg.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, []account.Method{account.MethodTOTP, account.MethodPIN}, got.AuthMethods)

	ok, err := f.creds.Has(ctx, credential.KindPIN, acc.ID)
	require.NoError(t, err)
	assert.True(t, ok, "credential survives a failed account write")
}

func TestDisableMethod_NotEnabledIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f)

	got, err := f.reg.DisableMethod(ctx, acc.ID, account.MethodPIN)
	require.NoError(t, err)
	assert.Equal(t, []account.Method{account.MethodTOTP}, got.AuthMethods)

	_, err = f.reg.DisableMethod(ctx, acc.ID, account.Method("sms"))
	assert.ErrorIs(t, err, account.ErrUnknownMethod)
	_, err = f.reg.DisableMethod(ctx, "missing", account.MethodPIN)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestEnableMethod_PINRequiresSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, m := range []account.Method{account.MethodPIN, account.MethodPattern} {
		t.Run(string(m), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			acc := addLocal(t, f)

			got, outcome, err := f.reg.EnableMethod(ctx, acc.ID, m)
			require.NoError(t, err)
			assert.Equal(t, account.OutcomeSetupRequired, outcome)
			assert.False(t, got.HasMethod(m))

			stored, err := f.reg.Get(ctx, acc.ID)
			require.NoError(t, err)
			assert.False(t, stored.HasMethod(m), "flag is not set before setup completes")
		})
	}
}

func TestEnableMethod_WithExistingCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f)
	require.NoError(t, f.creds.SetupPIN(ctx, acc.ID, "4321"))

	got, outcome, err := f.reg.EnableMethod(ctx, acc.ID, account.MethodPIN)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeEnabled, outcome)
	assert.Equal(t, []account.Method{account.MethodTOTP, account.MethodPIN}, got.AuthMethods)

	_, outcome, err = f.reg.EnableMethod(ctx, acc.ID, account.MethodPIN)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeUnchanged, outcome)
}

func TestEnableMethod_PasskeyEnablesThenAsksForSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f)

	got, outcome, err := f.reg.EnableMethod(ctx, acc.ID, account.MethodPasskey)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeSetupRequired, outcome)
	assert.True(t, got.HasMethod(account.MethodPasskey))
}

func TestEnableMethod_Capability(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("available", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		acc := addLocal(t, f)
		f.caps.On("Available", mock.Anything, account.MethodBiometric).Return(true, nil).Once()

		got, outcome, err := f.reg.EnableMethod(ctx, acc.ID, account.MethodBiometric)
		require.NoError(t, err)
		assert.Equal(t, account.OutcomeEnabled, outcome)
		assert.True(t, got.HasMethod(account.MethodBiometric))
		f.caps.AssertExpectations(t)
	})

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		acc := addLocal(t, f)
		f.caps.On("Available", mock.Anything, account.MethodScreenLock).Return(false, nil).Once()

		_, _, err := f.reg.EnableMethod(ctx, acc.ID, account.MethodScreenLock)
		assert.ErrorIs(t, err, account.ErrCapabilityUnavailable)

		stored, err := f.reg.Get(ctx, acc.ID)
		require.NoError(t, err)
		assert.False(t, stored.HasMethod(account.MethodScreenLock))
	})

	t.Run("checker error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		acc := addLocal(t, f)
		boom := errors.New("sensor busy")
		f.caps.On("Available", mock.Anything, account.MethodBiometric).Return(false, boom).Once()

		_, _, err := f.reg.EnableMethod(ctx, acc.ID, account.MethodBiometric)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no checker", func(t *testing.T) {
		t.Parallel()
		reg := account.NewRegistry(newFixture(t).kv)
		acc, err := reg.Add(ctx, localDraft("bob"))
		require.NoError(t, err)

		_, _, err = reg.EnableMethod(ctx, acc.ID, account.MethodBiometric)
		assert.ErrorIs(t, err, account.ErrCapabilityUnavailable)
	})
}

func TestCompleteSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f)

	_, err := f.reg.CompleteSetup(ctx, acc.ID, account.MethodPIN, func(ctx context.Context, id string) error {
		return f.creds.SetupPIN(ctx, id, "12")
	})
	assert.ErrorIs(t, err, credential.ErrInvalidPIN)
	stored, err := f.reg.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasMethod(account.MethodPIN))

	got, err := f.reg.CompleteSetup(ctx, acc.ID, account.MethodPIN, func(ctx context.Context, id string) error {
		return f.creds.SetupPIN(ctx, id, "1234")
	})
	require.NoError(t, err)
	assert.True(t, got.HasMethod(account.MethodPIN))
	assert.NoError(t, f.creds.VerifyPIN(ctx, acc.ID, "1234"))

	called := false
	_, err = f.reg.CompleteSetup(ctx, "missing", account.MethodPIN, func(context.Context, string) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, account.ErrNotFound)
	assert.False(t, called, "no credential is stored for an unknown account")

	_, err = f.reg.CompleteSetup(ctx, acc.ID, account.MethodBiometric, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, account.ErrUnknownMethod)
}

func TestToggleMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f)
	f.caps.On("Available", mock.Anything, account.MethodBiometric).Return(true, nil)

	_, outcome, err := f.reg.ToggleMethod(ctx, acc.ID, account.MethodBiometric)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeEnabled, outcome)

	got, outcome, err := f.reg.ToggleMethod(ctx, acc.ID, account.MethodBiometric)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeDisabled, outcome)
	assert.Equal(t, []account.Method{account.MethodTOTP}, got.AuthMethods)

	_, _, err = f.reg.ToggleMethod(ctx, acc.ID, account.MethodTOTP)
	assert.ErrorIs(t, err, account.ErrLastMethod)
	assert.Equal(t, "setup_required", account.OutcomeSetupRequired.String())
}

func TestSetPreferred(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := addLocal(t, f, account.MethodTOTP, account.MethodBiometric)

	_, err := f.reg.SetPreferred(ctx, acc.ID, account.MethodPIN)
	assert.ErrorIs(t, err, account.ErrMethodNotEnabled)

	got, err := f.reg.SetPreferred(ctx, acc.ID, account.MethodBiometric)
	require.NoError(t, err)
	assert.Equal(t, account.MethodBiometric, got.DefaultMethod())

	got, err = f.reg.SetPreferred(ctx, acc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, account.MethodTOTP, got.DefaultMethod())
}
