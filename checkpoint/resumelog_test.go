package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhaseeb123/gicops/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeLog_AppendAndReplayRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.log")

	log, err := Open(path, DefaultOptions())
	require.NoError(t, err)

	want := []Completion{
		{FileIdx: 0, FirstQID: 0, LastQID: 99},
		{FileIdx: 0, FirstQID: 100, LastQID: 199},
		{FileIdx: 1, FirstQID: 0, LastQID: 49},
	}
	for _, c := range want {
		require.NoError(t, log.Append(c))
	}
	require.NoError(t, log.Close())

	set, err := LoadCompletions(path)
	require.NoError(t, err)
	assert.Equal(t, len(want), set.Len())

	assert.True(t, set.Covers(core.FileIndex(0), core.SpectrumID(50)))
	assert.True(t, set.Covers(core.FileIndex(0), core.SpectrumID(150)))
	assert.True(t, set.Covers(core.FileIndex(1), core.SpectrumID(10)))
	assert.False(t, set.Covers(core.FileIndex(1), core.SpectrumID(50)))
	assert.False(t, set.Covers(core.FileIndex(2), core.SpectrumID(0)))
}

func TestResumeLog_ReopenAppendsAfterExistingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.log")

	log, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, log.Append(Completion{FileIdx: 0, FirstQID: 0, LastQID: 9}))
	require.NoError(t, log.Close())

	log2, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, log2.Append(Completion{FileIdx: 0, FirstQID: 10, LastQID: 19}))
	require.NoError(t, log2.Close())

	set, err := LoadCompletions(path)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Covers(core.FileIndex(0), core.SpectrumID(5)))
	assert.True(t, set.Covers(core.FileIndex(0), core.SpectrumID(15)))
}

func TestResumeLog_RejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-log.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a resume log at all"), 0o644))

	_, err := Open(path, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestLoadCompletions_MissingFileReturnsEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")

	set, err := LoadCompletions(path)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestResumeLog_SnapshotRoundTripsThroughBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.log")

	log, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, log.Append(Completion{FileIdx: 3, FirstQID: 0, LastQID: 0}))

	snap, err := log.Snapshot()
	require.NoError(t, err)
	require.NoError(t, log.Close())

	set, err := LoadCompletionsFromBytes(snap)
	require.NoError(t, err)
	assert.True(t, set.Covers(core.FileIndex(3), core.SpectrumID(0)))
}
