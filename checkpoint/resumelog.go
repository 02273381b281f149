package checkpoint

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/mhaseeb123/gicops/core"
)

// Durability controls the durability guarantees of the resume log.
type Durability int

const (
	// DurabilityAsync relies on the OS page cache. Fast but a crash can
	// lose the last few completions, which only costs re-scoring work on
	// resume, never a wrong result.
	DurabilityAsync Durability = iota
	// DurabilitySync calls fsync after every append.
	DurabilitySync
)

const (
	logMagic   = "GICOPSRL" // 8 bytes
	logVersion = 1
)

var (
	// ErrIncompatibleVersion is returned when a resume log was written by
	// a newer or older format than this build understands.
	ErrIncompatibleVersion = errors.New("checkpoint: incompatible resume log version")
	// ErrInvalidHeader is returned when a file's header does not look
	// like a resume log at all.
	ErrInvalidHeader = errors.New("checkpoint: invalid resume log header")
	// ErrUnknownCodec is returned when a resume log names a codec this
	// build does not register.
	ErrUnknownCodec = errors.New("checkpoint: unknown resume log codec")
)

// Options configures an opened ResumeLog.
type Options struct {
	Durability Durability
	// Codec is only used when creating a new log; an existing log
	// resolves its codec from its own header.
	Codec Codec
}

// DefaultOptions returns production-safe resume log options.
func DefaultOptions() Options {
	return Options{Durability: DurabilitySync, Codec: DefaultCodec}
}

// Completion marks a contiguous run of spectrum ids in one input file as
// fully scored and merged into the output. A resumed run skips any
// (FileIdx, QID) already covered by a logged Completion.
type Completion struct {
	FileIdx  core.FileIndex
	FirstQID core.SpectrumID
	LastQID  core.SpectrumID
}

// Covers reports whether qid in fileIdx falls within this completion.
func (c Completion) Covers(fileIdx core.FileIndex, qid core.SpectrumID) bool {
	return c.FileIdx == fileIdx && qid >= c.FirstQID && qid <= c.LastQID
}

// ResumeLog is an append-only, zstd-compressed log of Completion records.
//
// Each append is an independent zstd frame, length-prefixed, so a log
// truncated mid-write (the process died between the length prefix and the
// frame bytes) loses at most its last, incomplete record on replay.
type ResumeLog struct {
	mu    sync.Mutex
	file  *os.File
	bw    *bufio.Writer
	codec Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
	opts  Options
	path  string

	writtenOffset int64 // bytes appended, including not-yet-synced ones
	syncedOffset  int64
	syncCond      *sync.Cond
	doneCond      *sync.Cond
	closed        bool
	lastErr       error
	wg            sync.WaitGroup
}

// Open opens or creates a resume log at path.
func Open(path string, opts Options) (*ResumeLog, error) {
	if opts.Codec == nil {
		opts.Codec = DefaultCodec
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	var activeCodec Codec
	if stat.Size() == 0 {
		activeCodec = opts.Codec
		if err := writeHeader(f, activeCodec.Name()); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		name, err := readHeader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		c, ok := CodecByName(name)
		if !ok {
			f.Close()
			return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
		}
		activeCodec = c
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		f.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		f.Close()
		enc.Close()
		return nil, err
	}

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		enc.Close()
		dec.Close()
		return nil, err
	}

	l := &ResumeLog{
		file:          f,
		bw:            bufio.NewWriter(f),
		codec:         activeCodec,
		enc:           enc,
		dec:           dec,
		opts:          opts,
		path:          path,
		writtenOffset: offset,
		syncedOffset:  offset,
	}
	l.syncCond = sync.NewCond(&l.mu)
	l.doneCond = sync.NewCond(&l.mu)

	if opts.Durability == DurabilitySync {
		l.wg.Add(1)
		go l.runSyncer()
	}

	return l, nil
}

func writeHeader(f *os.File, codecName string) error {
	header := make([]byte, 8+4+4+len(codecName))
	copy(header[0:8], logMagic)
	binary.LittleEndian.PutUint32(header[8:12], uint32(logVersion))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(codecName)))
	copy(header[16:], codecName)
	if _, err := f.Write(header); err != nil {
		return err
	}
	return f.Sync()
}

func readHeader(f *os.File) (codecName string, err error) {
	fixed := make([]byte, 16)
	if _, err := io.ReadFull(f, fixed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if string(fixed[0:8]) != logMagic {
		return "", fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, fixed[0:8])
	}
	ver := binary.LittleEndian.Uint32(fixed[8:12])
	if ver != logVersion {
		return "", fmt.Errorf("%w: version %d (expected %d)", ErrIncompatibleVersion, ver, logVersion)
	}
	nameLen := binary.LittleEndian.Uint32(fixed[12:16])
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(f, nameBuf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	return string(nameBuf), nil
}

// Append writes a Completion and, in DurabilitySync mode, blocks until it
// is fsync'd.
func (l *ResumeLog) Append(c Completion) error {
	offset, err := l.AppendAsync(c)
	if err != nil {
		return err
	}
	if l.opts.Durability == DurabilitySync {
		return l.WaitFor(offset)
	}
	return nil
}

// AppendAsync writes a Completion to the log buffer without waiting for
// it to be synced, returning the logical offset of the end of the record.
func (l *ResumeLog) AppendAsync(c Completion) (int64, error) {
	raw, err := l.codec.Marshal(c)
	if err != nil {
		return 0, err
	}
	frame := l.enc.EncodeAll(raw, nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, os.ErrClosed
	}
	if l.lastErr != nil {
		return 0, l.lastErr
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(frame)))
	if _, err := l.bw.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	if _, err := l.bw.Write(frame); err != nil {
		return 0, err
	}
	if err := l.bw.Flush(); err != nil {
		return 0, err
	}

	l.writtenOffset += int64(len(lenBuf)) + int64(len(frame))
	endOffset := l.writtenOffset

	if l.opts.Durability == DurabilitySync {
		l.syncCond.Signal()
	}
	return endOffset, nil
}

func (l *ResumeLog) runSyncer() {
	defer l.wg.Done()
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		for l.writtenOffset <= l.syncedOffset && !l.closed {
			l.syncCond.Wait()
		}
		if l.closed && l.writtenOffset <= l.syncedOffset {
			return
		}

		target := l.writtenOffset

		l.mu.Unlock()
		err := l.file.Sync()
		l.mu.Lock()

		if err != nil {
			l.lastErr = fmt.Errorf("checkpoint: resume log sync failed: %w", err)
			l.doneCond.Broadcast()
			return
		}
		if target > l.syncedOffset {
			l.syncedOffset = target
		}
		l.doneCond.Broadcast()
	}
}

// WaitFor blocks until the log has been synced up to the given logical
// offset (as returned by AppendAsync).
func (l *ResumeLog) WaitFor(offset int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.syncedOffset < offset && !l.closed && l.lastErr == nil {
		l.doneCond.Wait()
	}
	if l.lastErr != nil {
		return l.lastErr
	}
	if l.closed && l.syncedOffset < offset {
		return os.ErrClosed
	}
	return nil
}

// Sync flushes buffered appends to stable storage.
func (l *ResumeLog) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	if l.lastErr != nil {
		return l.lastErr
	}
	if err := l.bw.Flush(); err != nil {
		return err
	}

	if l.opts.Durability == DurabilityAsync {
		return l.file.Sync()
	}

	target := l.writtenOffset
	l.syncCond.Signal()
	for l.syncedOffset < target && !l.closed && l.lastErr == nil {
		l.doneCond.Wait()
	}
	return l.lastErr
}

// Close flushes and closes the resume log.
func (l *ResumeLog) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return os.ErrClosed
	}
	if err := l.bw.Flush(); err != nil {
		l.mu.Unlock()
		l.file.Close()
		return err
	}
	l.closed = true
	l.syncCond.Signal()
	l.mu.Unlock()

	l.wg.Wait()

	l.enc.Close()
	l.dec.Close()
	return l.file.Close()
}

// Reader returns a reader over the log's Completion records, for replay
// on startup. The caller must Close it.
func (l *ResumeLog) Reader() (*Reader, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	if _, err := readHeader(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, r: bufio.NewReader(f), codec: l.codec, dec: l.dec}, nil
}

// Reader iterates over the Completion records of a resume log.
type Reader struct {
	f     *os.File
	r     *bufio.Reader
	codec Codec
	dec   *zstd.Decoder
}

// Next reads the next Completion. It returns io.EOF when done, and
// io.ErrUnexpectedEOF if the log ends mid-record (a crash during the last
// append), which callers should treat as "stop replay here", not a fatal
// error.
func (r *Reader) Next() (Completion, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Completion{}, err
		}
		return Completion{}, err
	}
	frameLen := binary.LittleEndian.Uint32(lenBuf[:])
	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(r.r, frame); err != nil {
		return Completion{}, io.ErrUnexpectedEOF
	}
	raw, err := r.dec.DecodeAll(frame, nil)
	if err != nil {
		return Completion{}, io.ErrUnexpectedEOF
	}
	var c Completion
	if err := r.codec.Unmarshal(raw, &c); err != nil {
		return Completion{}, err
	}
	return c, nil
}

// Close closes the reader's file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// LoadCompletions opens path read-only and replays every well-formed
// record into a Set, stopping silently at the first truncated or missing
// record (consistent with Reader.Next's crash-tolerance contract).
func LoadCompletions(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSet(), nil
		}
		return nil, err
	}
	defer f.Close()

	name, err := readHeader(f)
	if err != nil {
		return nil, err
	}
	codec, ok := CodecByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	r := &Reader{f: f, r: bufio.NewReader(f), codec: codec, dec: dec}
	set := NewSet()
	for {
		c, err := r.Next()
		if err != nil {
			break
		}
		set.Add(c)
	}
	return set, nil
}

// Set is a queryable collection of Completions, grouped by input file, for
// fast "was this spectrum already scored" checks on resume.
type Set struct {
	byFile map[core.FileIndex][]Completion
}

// NewSet returns an empty completion set.
func NewSet() *Set {
	return &Set{byFile: make(map[core.FileIndex][]Completion)}
}

// Add records a completion.
func (s *Set) Add(c Completion) {
	s.byFile[c.FileIdx] = append(s.byFile[c.FileIdx], c)
}

// Covers reports whether qid in fileIdx is covered by any completion.
func (s *Set) Covers(fileIdx core.FileIndex, qid core.SpectrumID) bool {
	for _, c := range s.byFile[fileIdx] {
		if c.Covers(fileIdx, qid) {
			return true
		}
	}
	return false
}

// Len returns the number of completions recorded.
func (s *Set) Len() int {
	n := 0
	for _, cs := range s.byFile {
		n += len(cs)
	}
	return n
}

// Snapshot returns the raw on-disk bytes of the log, for pushing to a
// RemoteSync. Buffered appends are flushed to the file first, so every
// appended record is included, whether or not it has been fsync'd yet.
func (l *ResumeLog) Snapshot() ([]byte, error) {
	l.mu.Lock()
	if err := l.bw.Flush(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()
	return os.ReadFile(l.path)
}

// LoadCompletionsFromBytes parses a resume log already read into memory
// (e.g. pulled from a RemoteSync) into a Set, with the same
// crash-tolerant truncation handling as LoadCompletions.
func LoadCompletionsFromBytes(data []byte) (*Set, error) {
	tmp, err := os.CreateTemp("", "gicops-resumelog-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return LoadCompletions(tmp.Name())
}
