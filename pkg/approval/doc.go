// Package approval resolves incoming login requests to enrolled accounts and
// drives the user through approving or denying them.
//
// # Matching
//
// Match tries three tiers in order, and the first tier with a matching account
// wins:
//
//  1. Strict: email equals the account label, app ids are equal and the
//     account is centralized.
//  2. Flexible: email equals the label and the app ids are equal, or the
//     account id contains the request app id, or the request app id contains
//     the account app id.
//  3. Loose: email equals the label and the account is centralized.
//
// The order is load-bearing: accounts provisioned by older versions only
// satisfy the later tiers.
//
// # Flow
//
// Approver.Begin returns a Flow whose states are:
//
//	resolving -> matched | not_found | incomplete
//	matched -> method_selected -> verifying -> approved | verification_failed
//	method_selected -> local_failed -> method_selected
//	matched | method_selected | local_failed -> denied
//
// Approve runs the selected method's local check first: a confirmed TOTP
// code, a PIN, pattern or passkey verified against its stored hash, or the
// platform biometric / device-credential prompt. Only on local success is a
// verifyclient.Client built for the matched account and the signed approval
// submitted. A local failure never reaches the network, and ErrCanceled from
// a prompt leaves the flow untouched.
//
// # Errors
//
// The package re-exports the sentinels of the layers below (ErrNetworkFailure,
// ErrRemoteRejection, ErrLocalVerificationFailed, ...) so a caller can classify
// any failure with errors.Is against this package. UserMessage turns each
// class into distinct text for the user.
package approval
