package kvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const fileFormatVersion = "1"

// fileDocument is the on-disk layout. Values are base64 so binary payloads
// (encrypted blobs) survive YAML.
type fileDocument struct {
	Version string            `yaml:"version"`
	Entries map[string]string `yaml:"entries"`
}

// File is a Store persisted as one YAML document.
// The whole document is rewritten on each Set or Delete.
type File struct {
	path string
	mode os.FileMode

	mu   sync.RWMutex
	data map[string][]byte
}

// FileOption configures a File store.
type FileOption func(*File)

// WithFileMode sets the permission bits of the store file. Default 0600.
func WithFileMode(mode os.FileMode) FileOption {
	return func(f *File) {
		f.mode = mode
	}
}

// NewFile opens the store at path, creating parent directories as needed.
// A missing file is an empty store; it is created on the first write.
func NewFile(path string, opts ...FileOption) (*File, error) {
	if path == "" {
		return nil, errors.Join(ErrStorage, errors.New("empty store path"))
	}
	f := &File{
		path: path,
		mode: 0o600,
		data: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	v := make([]byte, len(value))
	copy(v, value)
	f.data[key] = v

	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)

	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

// Path returns the location of the store file.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() error {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if len(raw) == 0 {
		return nil
	}

	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return errors.Join(ErrCorruptedStoreFile, err)
	}
	for k, v := range doc.Entries {
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return errors.Join(ErrCorruptedStoreFile, err)
		}
		f.data[k] = b
	}
	return nil
}

// flush writes the document to a sibling temp file and renames it over the
// target. Caller holds the write lock.
func (f *File) flush() error {
	doc := fileDocument{
		Version: fileFormatVersion,
		Entries: make(map[string]string, len(f.data)),
	}
	for k, v := range f.data {
		doc.Entries[k] = base64.StdEncoding.EncodeToString(v)
	}

	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kvstore-*.tmp")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := os.Chmod(tmpName, f.mode); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
