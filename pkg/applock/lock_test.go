package applock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/applock"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/hasher"
	"github.com/dmitrymomot/mfakit/pkg/kvstore"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLock(t *testing.T) (*applock.Lock, *kvstore.Memory, *clock) {
	t.Helper()
	kv := kvstore.NewMemory()
	c := &clock{t: time.UnixMilli(1700000000000)}
	return applock.New(kv, applock.WithClock(c.now)), kv, c
}

func ptr[T any](v T) *T { return &v }

var square = []credential.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 0}}

func TestConfig_Default(t *testing.T) {
	t.Parallel()
	l, _, _ := newLock(t)
	cfg, err := l.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, applock.Config{Enabled: false, Type: applock.TypeNone, Timeout: 60}, cfg)
}

func TestConfigure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _, _ := newLock(t)

	cfg, err := l.Configure(ctx, applock.Update{Timeout: ptr(300)})
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Timeout)

	_, err = l.Configure(ctx, applock.Update{Timeout: ptr(45)})
	assert.ErrorIs(t, err, applock.ErrInvalidTimeout)
	_, err = l.Configure(ctx, applock.Update{Type: ptr(applock.Type("face"))})
	assert.ErrorIs(t, err, applock.ErrInvalidType)

	_, err = l.Configure(ctx, applock.Update{Enabled: ptr(true), Type: ptr(applock.TypePIN)})
	assert.ErrorIs(t, err, applock.ErrNotSetUp, "a PIN lock needs a PIN first")

	require.NoError(t, l.SetPIN(ctx, "4321"))
	cfg, err = l.Configure(ctx, applock.Update{Enabled: ptr(true), Type: ptr(applock.TypePIN)})
	require.NoError(t, err)
	assert.Equal(t, applock.Config{Enabled: true, Type: applock.TypePIN, Timeout: 300}, cfg)

	stored, err := l.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, stored, "failed updates leave the stored config untouched")
}

func TestConfigure_Biometric(t *testing.T) {
	t.Parallel()
	l, _, _ := newLock(t)
	cfg, err := l.Configure(context.Background(), applock.Update{Enabled: ptr(true), Type: ptr(applock.TypeBiometric)})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
}

func TestPIN(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, kv, _ := newLock(t)

	assert.ErrorIs(t, l.VerifyPIN(ctx, "4321"), applock.ErrNotSetUp)
	assert.ErrorIs(t, l.SetPIN(ctx, "12a4"), credential.ErrInvalidPIN)

	require.NoError(t, l.SetPIN(ctx, "4321"))
	raw, err := kv.Get(ctx, applock.PINKey)
	require.NoError(t, err)
	assert.Equal(t, hasher.Hash("4321"), string(raw), "only the digest is stored")

	assert.NoError(t, l.VerifyPIN(ctx, "4321"))
	assert.ErrorIs(t, l.VerifyPIN(ctx, "4322"), applock.ErrLocalVerificationFailed)
}

func TestPattern(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _, _ := newLock(t)

	assert.ErrorIs(t, l.SetPattern(ctx, square[:3]), credential.ErrInvalidPattern)
	require.NoError(t, l.SetPattern(ctx, square))

	assert.NoError(t, l.VerifyPattern(ctx, square))
	reversed := []credential.Point{square[3], square[2], square[1], square[0]}
	assert.ErrorIs(t, l.VerifyPattern(ctx, reversed), applock.ErrLocalVerificationFailed, "order matters")
}

func TestHasCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _, _ := newLock(t)
	require.NoError(t, l.SetPattern(ctx, square))

	tests := []struct {
		typ  applock.Type
		want bool
	}{
		{applock.TypePIN, false},
		{applock.TypePattern, true},
		{applock.TypeBiometric, true},
		{applock.TypeNone, false},
	}
	for _, tt := range tests {
		got, err := l.HasCredentials(ctx, tt.typ)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.typ)
	}
}

func TestShouldLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _, c := newLock(t)

	locked, err := l.ShouldLock(ctx)
	require.NoError(t, err)
	assert.False(t, locked, "disabled lock never locks")

	require.NoError(t, l.SetPIN(ctx, "4321"))
	_, err = l.Configure(ctx, applock.Update{Enabled: ptr(true), Type: ptr(applock.TypePIN), Timeout: ptr(30)})
	require.NoError(t, err)

	locked, err = l.ShouldLock(ctx)
	require.NoError(t, err)
	assert.False(t, locked, "no recorded activity counts as active now")

	require.NoError(t, l.Touch(ctx))
	c.advance(29 * time.Second)
	locked, err = l.ShouldLock(ctx)
	require.NoError(t, err)
	assert.False(t, locked)

	c.advance(time.Second)
	locked, err = l.ShouldLock(ctx)
	require.NoError(t, err)
	assert.True(t, locked, "elapsed equal to the timeout locks")

	require.NoError(t, l.Unlock(ctx, "4321", nil))
	locked, err = l.ShouldLock(ctx)
	require.NoError(t, err)
	assert.False(t, locked, "unlock records activity")

	_, err = l.Configure(ctx, applock.Update{Timeout: ptr(0)})
	require.NoError(t, err)
	locked, err = l.ShouldLock(ctx)
	require.NoError(t, err)
	assert.True(t, locked, "zero timeout locks immediately")
}

func TestUnlock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _, _ := newLock(t)

	assert.ErrorIs(t, l.Unlock(ctx, "4321", nil), applock.ErrInvalidType, "type none has nothing to unlock")

	require.NoError(t, l.SetPattern(ctx, square))
	_, err := l.Configure(ctx, applock.Update{Enabled: ptr(true), Type: ptr(applock.TypePattern)})
	require.NoError(t, err)

	assert.ErrorIs(t, l.Unlock(ctx, "", square[:2]), applock.ErrLocalVerificationFailed)
	assert.NoError(t, l.Unlock(ctx, "", square))
}

func TestReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, kv, _ := newLock(t)

	require.NoError(t, l.SetPIN(ctx, "4321"))
	require.NoError(t, l.SetPattern(ctx, square))
	require.NoError(t, l.Touch(ctx))
	_, err := l.Configure(ctx, applock.Update{Enabled: ptr(true), Type: ptr(applock.TypePIN)})
	require.NoError(t, err)

	require.NoError(t, l.Reset(ctx))

	cfg, err := l.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, applock.DefaultConfig(), cfg)
	for _, key := range []string{applock.ConfigKey, applock.LastActivityKey, applock.PINKey, applock.PatternKey} {
		ok, err := kvstore.Exists(ctx, kv, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestUnlock_Lockout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _, c := newLock(t)
	require.NoError(t, l.SetPIN(ctx, "4321"))
	_, err := l.Configure(ctx, applock.Update{Enabled: ptr(true), Type: ptr(applock.TypePIN)})
	require.NoError(t, err)

	for i := 1; i < applock.MaxAttempts; i++ {
		err := l.Unlock(ctx, "0000", nil)
		var attempt *applock.AttemptError
		require.ErrorAs(t, err, &attempt)
		assert.Equal(t, applock.MaxAttempts-i, attempt.Remaining)
		assert.ErrorIs(t, err, applock.ErrLocalVerificationFailed)
	}

	err = l.Unlock(ctx, "0000", nil)
	assert.ErrorIs(t, err, applock.ErrLocalVerificationFailed)
	assert.ErrorIs(t, err, applock.ErrLockedOut)

	c.advance(10 * time.Second)
	err = l.Unlock(ctx, "4321", nil)
	var locked *applock.LockedOutError
	require.ErrorAs(t, err, &locked, "the right PIN is refused during lockout")
	assert.Equal(t, 20*time.Second, locked.RetryAfter)

	c.advance(20 * time.Second)
	require.NoError(t, l.Unlock(ctx, "4321", nil))

	err = l.Unlock(ctx, "0000", nil)
	var attempt *applock.AttemptError
	require.ErrorAs(t, err, &attempt)
	assert.Equal(t, applock.MaxAttempts-1, attempt.Remaining, "success resets the counter")
}
