// Package signature produces the device signatures that authenticate calls to
// the centralized verification server.
//
// A signature covers "deviceId|timestamp|method". The default legacy scheme
// digests that message with the shared secret appended, using a single
// SHA-256 pass from package hasher; the server recomputes exactly this value.
// WithScheme(SchemeHMAC) switches to HMAC-SHA256 for servers that support it.
//
//	sig, err := signature.Sign(deviceID, "totp", account.Secret)
//	if err != nil {
//	    // missing device id or secret
//	}
//	token := signature.AuthToken(sig) // "2024-01-02T03:04:05.678Z:5aed9d..."
//
// The device id is generated once per install with LoadOrCreateDeviceID and is
// an identifier, not a secret.
package signature
