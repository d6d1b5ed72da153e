package account

import (
	"fmt"
	"slices"

	"github.com/dmitrymomot/mfakit/pkg/credential"
)

// Method is an authentication method an account can be unlocked with.
type Method string

const (
	MethodTOTP       Method = "totp"
	MethodBiometric  Method = "biometric"
	MethodPasskey    Method = "passkey"
	MethodScreenLock Method = "screenlock"
	MethodPIN        Method = "pin"
	MethodPattern    Method = "pattern"
)

// Methods lists every method in display order.
var Methods = []Method{MethodTOTP, MethodBiometric, MethodPasskey, MethodScreenLock, MethodPIN, MethodPattern}

func (m Method) String() string { return string(m) }

func (m Method) Valid() bool {
	return slices.Contains(Methods, m)
}

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
	return m, nil
}

// CredentialKind returns the stored credential backing m, if any.
// Biometric and screen lock use OS enrollment; TOTP uses the account secret.
func (m Method) CredentialKind() (credential.Kind, bool) {
	switch m {
	case MethodPIN:
		return credential.KindPIN, true
	case MethodPattern:
		return credential.KindPattern, true
	case MethodPasskey:
		return credential.KindPasskey, true
	}
	return "", false
}

// RequiresCapability reports whether enabling m depends on device hardware.
func (m Method) RequiresCapability() bool {
	return m == MethodBiometric || m == MethodScreenLock
}
