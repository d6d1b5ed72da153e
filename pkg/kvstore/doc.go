// Package kvstore is the scoped key-value storage boundary used by the
// account registry, the credential store and the device identity.
//
// Every backend implements Store: Get, Set and Delete on opaque byte values,
// with a miss reported as ErrNotFound. Callers that persist whole collections
// use GetJSON and SetJSON and treat the store as last-writer-wins; nothing in
// this package offers read-modify-write transactions.
//
// # Backends
//
//   • Memory     – process-local map, used by tests and the CLI "memory" mode.
//   • File       – a single YAML document on disk, rewritten through a temp file
//     and an atomic rename on every mutation.
//   • Redis      – go-redis client; Connect retries until the server answers PING.
//
// # Wrappers
//
//   • Namespaced – prefixes every key, so several installs can share one Redis.
//   • Encrypted  – AES-256-GCM at rest with a key derived via HKDF-SHA-256.
//     The storage key is bound as additional data, so a value copied under
//     another key fails to decrypt.
//
// # Usage
//
//	store, err := kvstore.NewFile("/var/lib/authenticator/store.yaml")
//	if err != nil {
//	    // handle error
//	}
//	store, err = kvstore.NewEncrypted(store, masterKey)
//
//	var accounts []Account
//	if err := kvstore.GetJSON(ctx, store, "@authenticator_accounts", &accounts); errors.Is(err, kvstore.ErrNotFound) {
//	    // first run
//	}
//
// # Error Handling
//
// Backend failures are joined with ErrStorage; keys are validated up front
// (ErrInvalidKey). Use errors.Is against the package sentinels.
package kvstore
