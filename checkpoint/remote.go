package checkpoint

import (
	"context"
	"io"

	"github.com/mhaseeb123/gicops/blobstore"
)

// RemoteSync mirrors a local resume log to durable object storage, so a
// node that loses its local disk (not just its process) can still resume
// from the last checkpoint pushed before it died.
//
// Both S3 (blobstore/s3.Store) and MinIO (blobstore/minio.Store) satisfy
// blobstore.BlobStore, so a single implementation here covers both
// backends; construct the store with s3.NewStore or minio.NewStore and
// pass it to NewRemoteSync.
type RemoteSync struct {
	store blobstore.BlobStore
	name  string
}

// NewRemoteSync returns a RemoteSync that mirrors to name within store.
func NewRemoteSync(store blobstore.BlobStore, name string) *RemoteSync {
	return &RemoteSync{store: store, name: name}
}

// Push uploads the given resume-log bytes, overwriting any prior checkpoint.
func (r *RemoteSync) Push(ctx context.Context, data []byte) error {
	return r.store.Put(ctx, r.name, data)
}

// Pull downloads the last-pushed checkpoint, returning blobstore.ErrNotFound
// if nothing has ever been pushed under this name.
func (r *RemoteSync) Pull(ctx context.Context) ([]byte, error) {
	blob, err := r.store.Open(ctx, r.name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	buf := make([]byte, blob.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	n, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
