// Package applock guards the whole authenticator behind an app-level PIN,
// pattern or biometric prompt, independent of per-account methods.
//
// The configuration is one JSON document ({enabled, type, timeout}) and the
// app PIN and pattern are stored as SHA-256 digests. Callers record activity
// with Touch and ask ShouldLock when the app returns to the foreground; a
// timeout of zero locks every time.
//
//	lock := applock.New(kv)
//	if err := lock.SetPIN(ctx, "4321"); err != nil { ... }
//	on, typ := true, applock.TypePIN
//	if _, err := lock.Configure(ctx, applock.Update{Enabled: &on, Type: &typ}); err != nil { ... }
//
//	locked, err := lock.ShouldLock(ctx)
//	if locked {
//	    err = lock.Unlock(ctx, pin, nil)
//	}
package applock
