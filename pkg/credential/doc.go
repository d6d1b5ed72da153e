// Package credential stores and verifies the app-managed secrets an account
// can be unlocked with: a 4-6 digit PIN, a grid pattern and a passkey.
//
// Only hasher digests are persisted. KVStore keeps the layout existing
// installs use: PINs and patterns are whole-collection JSON lists under
// "@pin_credentials" and "@pattern_credentials", and each passkey is a JSON
// document under "passkey_<accountId>". Every write replaces the account's
// previous record; nothing is updated in place.
//
// Biometric and screen-lock unlocks rely on OS enrollment and have no record
// here.
//
// # Usage
//
//	svc := credential.NewService(credential.NewKVStore(kv))
//
//	if err := svc.SetupPIN(ctx, acc.ID, "1234"); err != nil {
//	    // credential.ErrInvalidPIN
//	}
//	switch err := svc.VerifyPIN(ctx, acc.ID, input); {
//	case err == nil:
//	    // unlocked
//	case errors.Is(err, credential.ErrLocalVerificationFailed):
//	    // wrong PIN, let the user retry
//	}
package credential
