package credential

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrymomot/mfakit/pkg/kvstore"
)

// Storage keys. PINs and patterns live in one list each; passkeys get one key
// per account.
const (
	PINCollectionKey     = "@pin_credentials"
	PatternCollectionKey = "@pattern_credentials"
	PasskeyKeyPrefix     = "passkey_"
)

// Store is the boundary to durable credential storage. There is at most one
// record per (kind, accountID).
type Store interface {
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, kind Kind, accountID string) (*Record, error)
	// Put replaces any existing record for (kind, accountID).
	Put(ctx context.Context, kind Kind, accountID string, rec Record) error
	// Delete removes the record. Missing records are not an error.
	Delete(ctx context.Context, kind Kind, accountID string) error
	Exists(ctx context.Context, kind Kind, accountID string) (bool, error)
}

// KVStore implements Store on top of a kvstore.Store.
type KVStore struct {
	kv kvstore.Store
}

// NewKVStore returns a Store persisted in kv.
func NewKVStore(kv kvstore.Store) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Get(ctx context.Context, kind Kind, accountID string) (*Record, error) {
	if err := kind.validate(); err != nil {
		return nil, err
	}

	switch kind {
	case KindPIN:
		list, err := loadList[pinRecord](ctx, s.kv, PINCollectionKey)
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(list, func(r pinRecord) bool { return r.AccountID == accountID })
		if i < 0 {
			return nil, ErrNotFound
		}
		return list[i].record(), nil

	case KindPattern:
		list, err := loadList[patternRecord](ctx, s.kv, PatternCollectionKey)
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(list, func(r patternRecord) bool { return r.AccountID == accountID })
		if i < 0 {
			return nil, ErrNotFound
		}
		return list[i].record(), nil

	default:
		var rec passkeyRecord
		err := kvstore.GetJSON(ctx, s.kv, PasskeyKeyPrefix+accountID, &rec)
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		return rec.record(), nil
	}
}

func (s *KVStore) Put(ctx context.Context, kind Kind, accountID string, rec Record) error {
	if err := kind.validate(); err != nil {
		return err
	}
	created := rec.CreatedAt.UnixMilli()

	switch kind {
	case KindPIN:
		return replaceInList(ctx, s.kv, PINCollectionKey, accountID,
			func(r pinRecord) string { return r.AccountID },
			&pinRecord{AccountID: accountID, HashedPin: rec.Hash, CreatedAt: created},
		)

	case KindPattern:
		return replaceInList(ctx, s.kv, PatternCollectionKey, accountID,
			func(r patternRecord) string { return r.AccountID },
			&patternRecord{AccountID: accountID, HashedPattern: rec.Hash, GridSize: rec.GridSize, CreatedAt: created},
		)

	default:
		key := PasskeyKeyPrefix + accountID
		if err := s.kv.Delete(ctx, key); err != nil {
			return errors.Join(ErrStorage, err)
		}
		err := kvstore.SetJSON(ctx, s.kv, key, passkeyRecord{
			ID:        rec.ID,
			AccountID: accountID,
			Name:      rec.Name,
			HashedKey: rec.Hash,
			CreatedAt: created,
		})
		if err != nil {
			return errors.Join(ErrStorage, err)
		}
		return nil
	}
}

func (s *KVStore) Delete(ctx context.Context, kind Kind, accountID string) error {
	if err := kind.validate(); err != nil {
		return err
	}

	switch kind {
	case KindPIN:
		return replaceInList[pinRecord](ctx, s.kv, PINCollectionKey, accountID,
			func(r pinRecord) string { return r.AccountID }, nil)
	case KindPattern:
		return replaceInList[patternRecord](ctx, s.kv, PatternCollectionKey, accountID,
			func(r patternRecord) string { return r.AccountID }, nil)
	default:
		if err := s.kv.Delete(ctx, PasskeyKeyPrefix+accountID); err != nil {
			return errors.Join(ErrStorage, err)
		}
		return nil
	}
}

func (s *KVStore) Exists(ctx context.Context, kind Kind, accountID string) (bool, error) {
	_, err := s.Get(ctx, kind, accountID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func loadList[T any](ctx context.Context, kv kvstore.Store, key string) ([]T, error) {
	var list []T
	err := kvstore.GetJSON(ctx, kv, key, &list)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return list, nil
}

// replaceInList drops every entry owned by accountID and, when add is non-nil,
// appends it. The whole collection is written back.
func replaceInList[T any](ctx context.Context, kv kvstore.Store, key, accountID string, owner func(T) string, add *T) error {
	list, err := loadList[T](ctx, kv, key)
	if err != nil {
		return err
	}

	filtered := slices.DeleteFunc(list, func(r T) bool { return owner(r) == accountID })
	if add == nil && len(filtered) == len(list) {
		return nil
	}
	if add != nil {
		filtered = append(filtered, *add)
	}
	if filtered == nil {
		filtered = []T{}
	}

	if err := kvstore.SetJSON(ctx, kv, key, filtered); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
