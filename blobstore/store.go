package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing durable checkpoint and index
// blobs (chunk files, manifests, resume-log segments, snapshot markers).
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens a blob for streaming writes. MemoryStore and the object
	// store backends publish the blob only when Close is called; LocalStore
	// writes the file in place, so readers can see a partial blob before
	// Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically in a single call.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadAt reads len(p) bytes starting at off, following io.ReaderAt
	// semantics except for the added context.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a streaming reader over [off, off+length).
	ReadRange(ctx context.Context, off, length int64) (ReadCloser, error)
}

// WritableBlob is a handle to a blob being written.
type WritableBlob interface {
	io.Writer
	io.Closer
	// Sync commits buffered data to stable storage where the backend
	// supports it; a no-op for backends that only commit on Close.
	Sync() error
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// ReadCloser is the reader type returned by Blob.ReadRange.
type ReadCloser = io.ReadCloser

// NopReadCloser adapts an io.Reader into a ReadCloser whose Close is a no-op.
func NopReadCloser(r io.Reader) ReadCloser {
	return io.NopCloser(r)
}
