// Package totp implements the one-time-password side of the authenticator:
// the RFC 4648 base32 secret codec, RFC 4226/6238 code generation and the
// otpauth:// key URI format used by setup QR codes.
//
// The engine is self-contained on top of crypto/hmac. Generated codes must be
// bit-exact with the remote verifier, which runs its own RFC 6238
// implementation, so the counter is computed with integer division only and
// truncation follows RFC 4226 section 5.3 to the letter.
//
// # Architecture
//
//   • base32.go   – DecodeSecret, EncodeSecret, NormalizeSecret and GenerateSecret.
//     Decoding is strict: any character outside A–Z2–7 yields ErrInvalidSecretFormat.
//
//   • otp.go      – Generate (period, digits, SHA1/SHA256/SHA512, fixed time),
//     GenerateHOTP, ValidateTOTP with a ±1 step window and RemainingSeconds.
//
//   • uri.go      – ParseURI and GetTOTPURI for the Google Authenticator key URI format.
//
//   • generator.go – Generator, a clocked code source with a small LRU of decoded
//     keys for screens that refresh once per second.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret(0)
//
//	code, err := totp.Generate(secret, totp.Params{Digits: 6, Period: 30})
//	if err != nil {
//	    // handle error
//	}
//	left := totp.RemainingSeconds(30, time.Now())
//
//	key, ok := totp.ParseURI("otpauth://totp/ACME:alice@example.com?secret=JBSWY3DPEHPK3PXP")
//	if !ok {
//	    // not a TOTP QR code, try another format
//	}
//
// # Error Handling
//
// Operations return package sentinels (ErrInvalidSecretFormat, ErrInvalidDigits,
// ErrInvalidPeriod, ...) possibly joined with errors.Join. Inspect them with
// errors.Is. ParseURI is the exception: an unrecognized URI is reported with a
// false result, never an error.
//
// # See Also
//
//   • RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   • RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
//   • RFC 4648 – The Base16, Base32, and Base64 Data Encodings
package totp
