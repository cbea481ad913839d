// Copyright © 2026 The flextools authors.

// file.go contains File I/O: reading and writing file-data sector chains,
// including link threading and logical-record-number stamping, and the
// text/binary codec applied on import and export. See spec.md §4.5.
package flex

import "encoding/binary"

// payloadSize is the number of content bytes per sector (bytes 4..255).
const payloadSize = SectorSize - 4

// Mode selects binary or text interpretation of a file's content bytes.
type Mode int

const (
	// Binary copies sector payload bytes verbatim.
	Binary Mode = iota
	// Text applies the FLEX text codec (see EncodeText/DecodeText).
	Text
)

// chainWriter allocates and threads a sector chain through a FreeList and
// ImageBuffer, used by both Engine.AddFile's happy path and its
// out-of-space unwind.
type chainWriter struct {
	ib   *ImageBuffer
	free *FreeList
}

// writeResult summarizes a successfully written chain.
type writeResult struct {
	Head    TrackSector
	Tail    TrackSector
	Sectors uint16
}

// WriteChain writes data (already text-encoded if applicable) as a new
// sector chain. A zero-length input still allocates exactly one sector,
// containing only the end-of-chain terminator (spec.md's zero-byte-file
// boundary behavior). On OutOfSpace, every sector allocated so far for
// this call is released back to the free list before the error is
// returned, so the operation is atomic at the chain level.
func (cw *chainWriter) WriteChain(data []byte) (writeResult, error) {
	var allocated []TrackSector
	releaseOnFailure := func() {
		if len(allocated) == 0 {
			return
		}
		head := allocated[0]
		tail := allocated[len(allocated)-1]
		// Best-effort: a failure here would compound the original
		// OutOfSpace error with a second one; the original is what the
		// caller needs to see.
		_ = cw.free.Release(head, tail, uint16(len(allocated)))
	}

	chunks := chunk(data, payloadSize)
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}

	var prev TrackSector
	havePrev := false
	for i, c := range chunks {
		ts, err := cw.free.Allocate()
		if err != nil {
			releaseOnFailure()
			return writeResult{}, err
		}
		allocated = append(allocated, ts)

		sector := make([]byte, SectorSize)
		binary.BigEndian.PutUint16(sector[2:4], uint16(i+1))
		copy(sector[4:], c)
		// Link bytes (0-1) default to zero; the final sector's terminator
		// is written as-is, and every earlier sector gets patched once its
		// successor is known, below.
		if err := cw.ib.WriteSector(ts.Track, ts.Sector, sector); err != nil {
			releaseOnFailure()
			return writeResult{}, err
		}

		if havePrev {
			if err := cw.patchLink(prev, ts); err != nil {
				releaseOnFailure()
				return writeResult{}, err
			}
		}
		prev = ts
		havePrev = true
	}

	return writeResult{
		Head:    allocated[0],
		Tail:    allocated[len(allocated)-1],
		Sectors: uint16(len(allocated)),
	}, nil
}

// patchLink rewrites from's link bytes (0-1) to point at to.
func (cw *chainWriter) patchLink(from, to TrackSector) error {
	sector, err := cw.ib.ReadSector(from.Track, from.Sector)
	if err != nil {
		return err
	}
	sector[0], sector[1] = to.Track, to.Sector
	return cw.ib.WriteSector(from.Track, from.Sector, sector)
}

// chunk splits data into slices of at most size bytes each.
func chunk(data []byte, size int) [][]byte {
	var out [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}

// ReadChain walks the sector chain starting at head, returning its
// content bytes decoded per mode. In binary mode the trailing NUL bytes of
// the final sector are treated as padding and dropped, so content that
// itself ends in NUL bytes comes back without them. If checkSequence is
// true, each sector's
// logical record number (bytes 2-3) must match the expected 1-based
// running count; a mismatch halts the read and returns the bytes decoded
// so far alongside a CorruptChain error, matching flextract.c's behavior
// of returning however far it got. A self-link, a link that exceeds the
// chain's maximum length, or a link outside the image's geometry aborts
// the walk without returning any partial output, since those indicate a
// corrupted chain rather than a bounded, recoverable inconsistency.
func ReadChain(ib *ImageBuffer, head TrackSector, mode Mode, checkSequence bool) ([]byte, error) {
	var out []byte
	track, sector := head.Track, head.Sector
	expected := uint16(1)
	maxSectors := int(ib.geom.Tracks) * int(ib.geom.SectorsPerTrack)
	var codec *textDecoder
	if mode == Text {
		codec = &textDecoder{}
	}

	for count := 0; ; count++ {
		ts := TrackSector{Track: track, Sector: sector}
		if ts.IsNil() {
			return out, nil
		}
		if count > maxSectors {
			return nil, CorruptChainf("file chain exceeds %d sectors without terminating", maxSectors)
		}
		if !ib.InBounds(track, sector) {
			return nil, CorruptChainf("file chain links to out-of-bounds sector (%d,%d)", track, sector)
		}
		data, err := ib.ReadSector(track, sector)
		if err != nil {
			return out, err
		}
		if checkSequence {
			lrn := binary.BigEndian.Uint16(data[2:4])
			if lrn != expected {
				return out, CorruptChainf("sector (%d,%d) has logical record number %d; expected %d", track, sector, lrn, expected)
			}
			expected++
		}
		payload := data[4:SectorSize]
		nextTrack, nextSector := data[0], data[1]
		if mode == Binary {
			if nextTrack == 0 && nextSector == 0 {
				// The final sector's unused payload tail is NUL padding.
				n := len(payload)
				for n > 0 && payload[n-1] == 0 {
					n--
				}
				payload = payload[:n]
			}
			out = append(out, payload...)
		} else {
			out = append(out, codec.decode(payload)...)
		}

		if nextTrack == track && nextSector == sector {
			return nil, CorruptChainf("file chain sector (%d,%d) self-links", track, sector)
		}
		track, sector = nextTrack, nextSector
	}
}

// --------------------- Text codec

// EncodeText translates host text to FLEX's on-disk text convention,
// applied during import: every LF (0x0A) becomes CR (0x0D), and every CR
// (0x0D) already present is dropped (so a host CRLF pair collapses to a
// single FLEX CR). Tab/space run-length compression is never emitted on
// import, matching flexadd.c's translate_text_content.
func EncodeText(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		switch b {
		case '\n':
			out = append(out, 0x0D)
		case '\r':
			// dropped
		default:
			out = append(out, b)
		}
	}
	return out
}

// textDecoder holds the running state needed to decode FLEX text across
// sector boundaries: the raw previous input byte (to dedup a CR/LF pair
// into a single line break, mirroring flextract.c's last_char) and whether
// a space-run-length escape (0x09) is pending its count byte.
type textDecoder struct {
	lastByte        byte
	pendingSpaceRun bool
}

// decode applies the FLEX-to-host text codec (flextract.c's
// exportTextFile) to one sector's worth of payload bytes, continuing any
// state left over from a previous sector. last_char tracks the raw
// previous byte unconditionally, exactly as the original C does (including
// a space-run's count byte becoming the new last_char).
func (d *textDecoder) decode(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		if d.pendingSpaceRun {
			for i := byte(0); i < b; i++ {
				out = append(out, ' ')
			}
			d.pendingSpaceRun = false
		} else {
			switch b {
			case 0x0A:
				if d.lastByte != 0x0D {
					out = append(out, '\n')
				}
			case 0x0D:
				if d.lastByte != 0x0A {
					out = append(out, '\n')
				}
			case 0x09:
				d.pendingSpaceRun = true
			default:
				if b > 0x1F && b < 0x7F {
					out = append(out, b)
				}
			}
		}
		d.lastByte = b
	}
	return out
}

// DecodeText applies the FLEX-to-host text codec to a complete, standalone
// byte sequence (a convenience wrapper around textDecoder for callers that
// already have the whole file in memory rather than reading it sector by
// sector).
func DecodeText(in []byte) []byte {
	d := &textDecoder{}
	return d.decode(in)
}
