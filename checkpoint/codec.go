// Package checkpoint implements a crash-resumable record of completed
// work, a write-ahead log so a distributed search run can restart after a
// node failure without rescoring spectra that were already merged into
// the output.
package checkpoint

import "github.com/mhaseeb123/gicops/codec"

// Codec encodes/decodes Completion records for the resume log.
type Codec = codec.Codec

// DefaultCodec is used for newly created resume logs.
var DefaultCodec = codec.Default

// CodecByName resolves a codec by its stable name, as read from a
// resume-log header. Resume logs are self-describing: the codec that
// wrote a log is always the one used to read it back, even if
// DefaultCodec changes in a later release.
func CodecByName(name string) (Codec, bool) {
	return codec.ByName(name)
}
