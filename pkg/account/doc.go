// Package account is the registry of enrolled authenticator accounts.
//
// An Account binds a TOTP secret to a display identity and, for centralized
// accounts, to the remote service (app id and API URL) that sends login
// approval requests. The Registry persists the collection as one JSON
// document under "@authenticator_accounts" and enforces the authentication
// method rules:
//
//   - an account always has at least one enabled method;
//   - disabling PIN, pattern or passkey deletes the stored credential;
//   - PIN and pattern are only switched on once a credential exists;
//   - biometric and screen lock need a capable device;
//   - the preferred method must be enabled.
//
// Deleting an account unregisters its push binding and removes every local
// credential that references it.
//
// # Enrollment
//
// ParseEnrollment accepts the content of a scanned QR code, either a setup
// payload
//
//	{"type":"tni-bouquet-account","issuer":"ACME","account":"alice@example.com",
//	 "secret":"JBSWY3DPEHPK3PXP","app_id":"acme-web","apiUrl":"https://auth.acme.test"}
//
// or a standard otpauth://totp/ URI, and returns a Draft for Registry.Add.
// ExportQR renders an account back into a PNG QR code.
//
// # Usage
//
//	reg := account.NewRegistry(kv,
//	    account.WithCredentials(creds),
//	    account.WithPushRegistrar(push),
//	)
//	draft, err := account.ParseEnrollment(scanned)
//	if err != nil {
//	    // account.ErrUnrecognizedQR
//	}
//	acc, err := reg.Add(ctx, draft)
//
//	_, outcome, err := reg.EnableMethod(ctx, acc.ID, account.MethodPIN)
//	if outcome == account.OutcomeSetupRequired {
//	    _, err = reg.CompleteSetup(ctx, acc.ID, account.MethodPIN, func(ctx context.Context, id string) error {
//	        return creds.SetupPIN(ctx, id, pin)
//	    })
//	}
package account
