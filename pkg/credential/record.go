package credential

import (
	"fmt"
	"time"
)

// Kind names a class of local credential.
type Kind string

const (
	KindPIN     Kind = "pin"
	KindPattern Kind = "pattern"
	KindPasskey Kind = "passkey"
)

// Kinds lists every credential kind.
var Kinds = []Kind{KindPIN, KindPattern, KindPasskey}

func (k Kind) Valid() bool {
	switch k {
	case KindPIN, KindPattern, KindPasskey:
		return true
	}
	return false
}

func (k Kind) validate() error {
	if !k.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	return nil
}

// Record is one stored credential. Hash is a hasher digest; the plaintext is
// never kept.
type Record struct {
	Kind      Kind
	AccountID string
	Hash      string
	// GridSize applies to patterns only.
	GridSize int
	// ID and Name apply to passkeys only.
	ID        string
	Name      string
	CreatedAt time.Time
}

// Wire formats. Field names and millisecond timestamps match what existing
// installs have persisted.

type pinRecord struct {
	AccountID string `json:"accountId"`
	HashedPin string `json:"hashedPin"`
	CreatedAt int64  `json:"createdAt"`
}

type patternRecord struct {
	AccountID     string `json:"accountId"`
	HashedPattern string `json:"hashedPattern"`
	GridSize      int    `json:"gridSize"`
	CreatedAt     int64  `json:"createdAt"`
}

type passkeyRecord struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	HashedKey string `json:"hashedKey"`
	CreatedAt int64  `json:"createdAt"`
}

func (r pinRecord) record() *Record {
	return &Record{
		Kind:      KindPIN,
		AccountID: r.AccountID,
		Hash:      r.HashedPin,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
}

func (r patternRecord) record() *Record {
	grid := r.GridSize
	if grid <= 0 {
		grid = DefaultGridSize
	}
	return &Record{
		Kind:      KindPattern,
		AccountID: r.AccountID,
		Hash:      r.HashedPattern,
		GridSize:  grid,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
}

func (r passkeyRecord) record() *Record {
	return &Record{
		Kind:      KindPasskey,
		AccountID: r.AccountID,
		Hash:      r.HashedKey,
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
}
