package signature

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/kvstore"
)

// DeviceIDKey is the storage key holding the install's device id.
const DeviceIDKey = "@device_id"

// NewDeviceID returns "<unix millis>_<base36 random>".
func NewDeviceID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36)
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix
}

// LoadOrCreateDeviceID returns the persisted device id, generating and
// storing one on first use. The id is stable for the life of the install.
func LoadOrCreateDeviceID(ctx context.Context, kv kvstore.Store) (string, error) {
	raw, err := kv.Get(ctx, DeviceIDKey)
	if err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return "", errors.Join(ErrDeviceIDStorage, err)
	}

	id := NewDeviceID()
	if err := kv.Set(ctx, DeviceIDKey, []byte(id)); err != nil {
		return "", errors.Join(ErrDeviceIDStorage, err)
	}
	return id, nil
}
