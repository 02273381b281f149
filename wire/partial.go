// Package wire implements the C6 partial-result codec and the wire-level
// record types of §4.5/§6: a fixed 128-sample, 16-bit quantized histogram
// tail plus its bounding PR record.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mhaseeb123/gicops/core"
)

// TailSamples is the fixed encoded-tail payload size (§3 "Encoded
// Histogram Tail").
const TailSamples = 128

// saturationThreshold is the N above which samples are rescaled instead of
// stored raw (§3, §4.5).
const saturationThreshold = 65500

// PR is the wire-level partial-result record for one spectrum (§3, §6).
// Field order and types match the wire layout exactly: little-endian
// {u16 min, u16 max2, f32 max, i32 N, i32 qID}.
type PR struct {
	Min  uint16
	Max2 uint16
	Max  float32
	N    int32
	QID  int32
}

const prSize = 2 + 2 + 4 + 4 + 4

// Tail is the fixed 128-sample encoded histogram tail transmitted
// alongside one PR record.
type Tail [TailSamples]uint16

// Encode builds the PR record and encoded tail for one spectrum's local
// histogram (§4.5). survival is the dense per-spectrum histogram, stt/end
// the inclusive bin range to encode, and hyperMax the local maximum
// hyperscore. The manager passes the first and last non-zero bins
// (scoring.Histogram.Bounds); no mass-window trimming is applied. N counts
// every bin in [stt, end], but only the first TailSamples of those bins
// are stored in the tail.
func Encode(qid core.SpectrumID, survival []float64, stt, end int, hyperMax float32) (PR, Tail) {
	var n int64
	for i := stt; i <= end; i++ {
		n += int64(survival[i])
	}

	pr := PR{
		Min:  clampUint16(stt),
		Max2: clampUint16(end),
		Max:  hyperMax,
		N:    clampInt32(n),
		QID:  int32(qid),
	}

	var tail Tail
	span := end - stt + 1
	if span > TailSamples {
		span = TailSamples
	}

	if n > saturationThreshold {
		for i := 0; i < span; i++ {
			sample := survival[stt+i]
			tail[i] = uint16(sample * saturationThreshold / float64(n))
		}
	} else {
		for i := 0; i < span; i++ {
			tail[i] = uint16(survival[stt+i])
		}
	}

	return pr, tail
}

func clampUint16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

func clampInt32(v int64) int32 {
	if v > 1<<31-1 {
		return 1<<31 - 1
	}
	return int32(v)
}

// Decode blits an incoming (pr, tail) pair into the destination
// histogram from dest[pr.Min] up to dest[pr.Max2], at most TailSamples
// bins, accumulating across contributing
// nodes as §4.5 specifies (pdata += sample, pN += N). Dequantizes when
// pr.N > saturationThreshold.
//
// Returns ErrOutOfBounds (wrapping the offending bin) if pr.Max2 exceeds
// the destination histogram's bounds, matching §7 InvalidIndex.
func Decode(pr PR, tail Tail, dest []float64) (pN int64, err error) {
	if int(pr.Max2) >= len(dest) {
		return 0, &OutOfBoundsError{Bin: int(pr.Max2), Bound: len(dest)}
	}
	if pr.Min > pr.Max2 {
		return int64(pr.N), nil
	}

	span := int(pr.Max2-pr.Min) + 1
	if span > TailSamples {
		span = TailSamples
	}

	for i := 0; i < span; i++ {
		sample := float64(tail[i])
		if int64(pr.N) > saturationThreshold {
			sample = sample * float64(pr.N) / saturationThreshold
		}
		dest[int(pr.Min)+i] += sample
	}

	return int64(pr.N), nil
}

// WriteTo serializes pr and tail to w in the little-endian wire layout of
// §6.
func WriteTo(w io.Writer, pr PR, tail Tail) error {
	var buf [prSize]byte
	binary.LittleEndian.PutUint16(buf[0:2], pr.Min)
	binary.LittleEndian.PutUint16(buf[2:4], pr.Max2)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(pr.Max))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(pr.N))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(pr.QID))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("wire: write PR: %w", err)
	}

	var tbuf [TailSamples * 2]byte
	for i, s := range tail {
		binary.LittleEndian.PutUint16(tbuf[i*2:i*2+2], s)
	}
	if _, err := w.Write(tbuf[:]); err != nil {
		return fmt.Errorf("wire: write tail: %w", err)
	}
	return nil
}

// ReadFrom deserializes one (PR, Tail) pair from r.
func ReadFrom(r io.Reader) (PR, Tail, error) {
	var buf [prSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return PR{}, Tail{}, fmt.Errorf("wire: read PR: %w", err)
	}

	pr := PR{
		Min:  binary.LittleEndian.Uint16(buf[0:2]),
		Max2: binary.LittleEndian.Uint16(buf[2:4]),
		Max:  math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		N:    int32(binary.LittleEndian.Uint32(buf[8:12])),
		QID:  int32(binary.LittleEndian.Uint32(buf[12:16])),
	}

	var tbuf [TailSamples * 2]byte
	if _, err := io.ReadFull(r, tbuf[:]); err != nil {
		return PR{}, Tail{}, fmt.Errorf("wire: read tail: %w", err)
	}
	var tail Tail
	for i := range tail {
		tail[i] = binary.LittleEndian.Uint16(tbuf[i*2 : i*2+2])
	}

	return pr, tail, nil
}
