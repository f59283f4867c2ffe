package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/toolshed/shedmon/pkg/storage/status"
)

// MaxObjectSizeInMemory is the largest object GetBytes agrees to load
const MaxObjectSizeInMemory = 64 * 1024 * 1024

const (
	// OverWrite allows Put to replace an existing object
	OverWrite = false
	// NoOverWrite makes Put fail with status.ErrExists when the object is already there
	NoOverWrite = true
)

// Store implementations know how to write entries to a K/V model.Store.
//
// Typically this is something file system-like. Examples are S3, local FS, NFS, ...
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error)
	Clear(context.Context) error
}

// GetBytes reads a whole object in memory
func GetBytes(ctx context.Context, store Store, key string) ([]byte, error) {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	object, err := io.ReadAll(io.LimitReader(reader, MaxObjectSizeInMemory+1))
	if err != nil {
		return nil, err
	}
	if len(object) > MaxObjectSizeInMemory {
		return nil, status.ErrObjectTooBig.Wrapf("key %q", key)
	}
	return object, nil
}

// PutBytes writes an in-memory object
func PutBytes(ctx context.Context, store Store, key string, object []byte, exclusive bool) error {
	return store.Put(ctx, key, bytes.NewReader(object), exclusive)
}

// AllKeysPrefix iterates over all pages of keys matching some prefix
func AllKeysPrefix(ctx context.Context, store Store, prefix, delimiter string) ([]string, error) {
	const pageSize = 1024
	var (
		all   []string
		token string
	)
	for {
		keys, next, err := store.KeysPrefix(ctx, token, prefix, delimiter, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, keys...)
		if next == "" {
			return all, nil
		}
		token = next
	}
}
