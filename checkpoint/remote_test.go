package checkpoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mhaseeb123/gicops/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSync_PushThenPullRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rs := NewRemoteSync(store, "node-0/resume.log")

	path := filepath.Join(t.TempDir(), "resume.log")
	log, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, log.Append(Completion{FileIdx: 0, FirstQID: 0, LastQID: 9}))

	snap, err := log.Snapshot()
	require.NoError(t, err)
	require.NoError(t, log.Close())

	require.NoError(t, rs.Push(ctx, snap))

	pulled, err := rs.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, pulled)

	set, err := LoadCompletionsFromBytes(pulled)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestRemoteSync_PullBeforePushReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rs := NewRemoteSync(store, "node-0/resume.log")

	_, err := rs.Pull(ctx)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
