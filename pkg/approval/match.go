package approval

import (
	"strings"

	"github.com/dmitrymomot/mfakit/pkg/account"
)

// Tier is the matching rule that resolved a request to an account.
type Tier int

const (
	TierNone Tier = iota
	// TierStrict: same email, same app id, centralized account.
	TierStrict
	// TierFlexible: same email, and the app ids are equal or one contains the
	// other, or the account id contains the request app id.
	TierFlexible
	// TierLoose: same email, centralized account.
	TierLoose
)

func (t Tier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierFlexible:
		return "flexible"
	case TierLoose:
		return "loose"
	default:
		return "none"
	}
}

// MatchResult is the account a request resolved to and the tier that matched.
type MatchResult struct {
	Account *account.Account
	Tier    Tier
}

// Match resolves req against accounts. Tiers are tried in order and the
// first account satisfying the earliest tier wins, so a strict match always
// beats a loose one regardless of account order. Email comparison is exact.
func Match(accounts []account.Account, req *Request) (MatchResult, bool) {
	tiers := []struct {
		tier Tier
		ok   func(a *account.Account) bool
	}{
		{TierStrict, func(a *account.Account) bool {
			return a.AppID == req.AppID && a.IsCentralizedAuth
		}},
		{TierFlexible, func(a *account.Account) bool {
			// An empty app id on either side is contained in anything.
			return a.AppID == req.AppID ||
				strings.Contains(a.ID, req.AppID) ||
				strings.Contains(req.AppID, a.AppID)
		}},
		{TierLoose, func(a *account.Account) bool {
			return a.IsCentralizedAuth
		}},
	}

	for _, t := range tiers {
		for i := range accounts {
			a := &accounts[i]
			if a.Label == req.Email && t.ok(a) {
				return MatchResult{Account: a, Tier: t.tier}, true
			}
		}
	}
	return MatchResult{}, false
}
