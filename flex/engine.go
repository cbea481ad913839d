// Copyright © 2026 The flextools authors.

// engine.go contains the Public Engine API: the façade that front-end
// tools call. Each method is a sequenced composition of the lower-level
// managers in this package. See spec.md §4.6.
package flex

import (
	"io"
	"time"
)

// Descriptor describes one file's directory-entry-level characteristics,
// independent of its content.
type Descriptor struct {
	Name       string
	Sectors    int
	TotalBytes int // -1 if unknown without reading the chain
	Text       bool
	Month, Day, Year byte
}

// FileInfo pairs a Descriptor with file content.
type FileInfo struct {
	Descriptor Descriptor
	Data       []byte
}

// Warning is a non-fatal condition surfaced by an operation, such as a
// DateOutOfRange finding during SIR parsing.
type Warning struct {
	Err error
}

// Engine is the façade over a single loaded FLEX image. It owns the
// ImageBuffer and the managers built on top of it. An Engine is not safe
// for concurrent use (spec.md §5): all operations are synchronous and
// single-threaded, and there is no locking across handles.
type Engine struct {
	ib     *ImageBuffer
	sir    *SIR
	free   *FreeList
	dir    *Directory
	Config Config

	// Warnings accumulates non-fatal findings (currently just
	// DateOutOfRange) from the most recent Load/CreateImage call.
	Warnings []Warning
}

// CreateImage builds a brand-new, zeroed FLEX image of the given geometry,
// with an empty directory and a fully-populated free list, and returns an
// Engine bound to it. bootLoader, if non-nil, is copied (truncated or
// zero-padded) into sectors (0,1) and (0,2) — 512 bytes total — matching
// flexdsk.c's -b flag.
func CreateImage(geom Geometry, label string, volNumber uint16, bootLoader []byte, now time.Time, cfg Config) (*Engine, error) {
	if geom.Tracks < 1 {
		return nil, BadGeometryf("tracks must be >= 1; got %d", geom.Tracks)
	}
	if geom.SectorsPerTrack < 5 {
		return nil, BadGeometryf("sectors per track must be >= 5; got %d", geom.SectorsPerTrack)
	}
	if volNumber < 1 || volNumber > 255 {
		return nil, BadGeometryf("volume number must be in [1,255]; got %d", volNumber)
	}

	ib := NewImageBuffer(geom)

	// Boot sectors (0,1) and (0,2): 512 bytes total, zero-padded.
	boot := make([]byte, 512)
	copy(boot, bootLoader)
	if err := ib.WriteSector(0, 1, boot[0:256]); err != nil {
		return nil, err
	}
	if err := ib.WriteSector(0, 2, boot[256:512]); err != nil {
		return nil, err
	}

	// Sector (0,4) is reserved: zero it explicitly.
	if err := ib.WriteSector(0, 4, make([]byte, SectorSize)); err != nil {
		return nil, err
	}

	// Directory sectors (0,5)..(0,S), threaded to each other, empty.
	for s := byte(dirStartSector); s <= geom.SectorsPerTrack; s++ {
		data := make([]byte, SectorSize)
		if s < geom.SectorsPerTrack {
			data[0], data[1] = 0, s+1
		}
		if err := ib.WriteSector(0, s, data); err != nil {
			return nil, err
		}
	}

	// Free chain across (1,1)..(T-1,S), each linking to the next physical
	// sector in track-major order, terminating at (0,0).
	totalFree := 0
	for t := byte(1); t < geom.Tracks; t++ {
		for s := byte(1); s <= geom.SectorsPerTrack; s++ {
			data := make([]byte, SectorSize)
			nt, ns := nextPhysical(t, s, geom)
			data[0], data[1] = nt, ns
			if err := ib.WriteSector(t, s, data); err != nil {
				return nil, err
			}
			totalFree++
		}
	}

	sir := &SIR{
		VolumeLabel:  paddedVolumeLabel(label),
		VolumeNumber: volNumber,
		FirstFree:    TrackSector{Track: 1, Sector: 1},
		LastFree:     TrackSector{Track: geom.Tracks - 1, Sector: geom.SectorsPerTrack},
		FreeSectors:  uint16(totalFree),
		Month:        byte(now.Month()),
		Day:          byte(now.Day()),
		Year:         byte(now.Year() % 100),
		EndTrack:     geom.Tracks - 1,
		EndSector:    geom.SectorsPerTrack,
	}
	if err := sir.sync(ib); err != nil {
		return nil, err
	}

	return newEngine(ib, sir, cfg), nil
}

// nextPhysical returns the next sector in track-major, sector-minor order
// after (t, s), or (0, 0) if (t, s) is the last sector on the disk.
func nextPhysical(t, s byte, geom Geometry) (byte, byte) {
	if s < geom.SectorsPerTrack {
		return t, s + 1
	}
	if t+1 >= geom.Tracks {
		return 0, 0
	}
	return t + 1, 1
}

// LoadEngine reads a FLEX image from r, infers its geometry, and returns
// an Engine bound to it.
func LoadEngine(r io.Reader, cfg Config) (*Engine, error) {
	ib, err := LoadImage(r)
	if err != nil {
		return nil, err
	}
	sir, err := readSIR(ib)
	if err != nil {
		return nil, err
	}
	e := newEngine(ib, sir, cfg)
	if err := sir.ValidateDate(); err != nil {
		e.Warnings = append(e.Warnings, Warning{Err: err})
	}
	return e, nil
}

func newEngine(ib *ImageBuffer, sir *SIR, cfg Config) *Engine {
	return &Engine{
		ib:     ib,
		sir:    sir,
		free:   NewFreeList(ib, sir),
		dir:    NewDirectory(ib),
		Config: cfg,
	}
}

// Flush writes the engine's current image bytes to w.
func (e *Engine) Flush(w io.Writer) (int, error) {
	return e.ib.Flush(w)
}

// Geometry returns the engine's image geometry.
func (e *Engine) Geometry() Geometry {
	return e.ib.Geometry()
}

// SIR returns a copy of the engine's current SIR view.
func (e *Engine) SIR() SIR {
	return *e.sir
}

// AddFile imports host bytes as a new FLEX file. If asText is true, the
// content is run through EncodeText first and the directory entry's
// random-file flag is set to Config.TextFlagByte; otherwise the flag is
// the complement byte (0x00 when TextFlagByte is 0xFF, and vice versa).
// The file chain is fully written and threaded before the directory entry
// is inserted (spec.md §5's ordering guarantee); if the write runs out of
// space, every sector it allocated is released and no directory entry is
// written.
func (e *Engine) AddFile(name string, content []byte, asText bool, now time.Time) error {
	nameBytes, extBytes := HostNameToFlex(name)

	data := content
	if asText {
		data = EncodeText(content)
	}

	cw := &chainWriter{ib: e.ib, free: e.free}
	result, err := cw.WriteChain(data)
	if err != nil {
		return err
	}

	flag := complementByte(e.Config.TextFlagByte)
	if asText {
		flag = e.Config.TextFlagByte
	}

	entry := Entry{
		Name:         nameBytes,
		Ext:          extBytes,
		Start:        result.Head,
		TotalSectors: result.Sectors,
		RandomFlag:   flag,
		Month:        byte(now.Month()),
		Day:          byte(now.Day()),
		Year:         byte(now.Year() % 100),
	}
	if !e.Config.LegacyZeroEndTS {
		entry.End = result.Tail
	}

	return e.dir.Insert(entry)
}

// complementByte returns 0x00 if b is 0xFF and 0xFF otherwise, used to
// derive the "not text" random-file-flag value from Config.TextFlagByte.
func complementByte(b byte) byte {
	if b == 0xFF {
		return 0x00
	}
	return 0xFF
}

// ExtractFile reads the named file's content in the requested mode.
// checkSequence enables logical-record-number verification during the
// chain walk (spec.md §4.5).
func (e *Engine) ExtractFile(name string, mode Mode, checkSequence bool) (FileInfo, error) {
	entry, _, err := e.dir.Find(name)
	if err != nil {
		return FileInfo{}, err
	}
	// On a logical-record-number mismatch ReadChain returns what it decoded
	// so far alongside a CorruptChain error (other corruptions return no
	// data); pass that partial data back to the caller rather
	// than discarding it, matching flextract.c's behavior of writing out
	// however much of the file it reached before giving up.
	data, err := ReadChain(e.ib, entry.Start, mode, checkSequence)
	info := FileInfo{
		Descriptor: descriptorFromEntry(entry),
		Data:       data,
	}
	if err != nil {
		return info, err
	}
	return info, nil
}

// Delete removes the named file's directory entry and releases its chain
// back to the free list.
func (e *Engine) Delete(name string) error {
	entry, err := e.dir.Delete(name)
	if err != nil {
		return err
	}
	if entry.TotalSectors == 0 {
		return nil
	}
	// The entry's End field may be (0,0) under LegacyZeroEndTS; walk the
	// chain to find the true tail rather than trusting it.
	tail, err := e.chainTail(entry.Start)
	if err != nil {
		return err
	}
	return e.free.Release(entry.Start, tail, entry.TotalSectors)
}

// chainTail walks a chain to its final sector's address.
func (e *Engine) chainTail(head TrackSector) (TrackSector, error) {
	track, sector := head.Track, head.Sector
	maxSectors := int(e.ib.geom.Tracks) * int(e.ib.geom.SectorsPerTrack)
	for count := 0; ; count++ {
		if count > maxSectors {
			return TrackSector{}, CorruptChainf("file chain exceeds %d sectors without terminating", maxSectors)
		}
		if !e.ib.InBounds(track, sector) {
			return TrackSector{}, CorruptChainf("file chain links to out-of-bounds sector (%d,%d)", track, sector)
		}
		data, err := e.ib.ReadSector(track, sector)
		if err != nil {
			return TrackSector{}, err
		}
		nt, ns := data[0], data[1]
		next := TrackSector{Track: nt, Sector: ns}
		if next.IsNil() {
			return TrackSector{Track: track, Sector: sector}, nil
		}
		if nt == track && ns == sector {
			return TrackSector{}, CorruptChainf("file chain sector (%d,%d) self-links", track, sector)
		}
		track, sector = nt, ns
	}
}

// List returns descriptors for every active directory entry, in walk
// order.
func (e *Engine) List() ([]Descriptor, error) {
	entries, _, err := e.dir.Enumerate()
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(entries))
	for _, entry := range entries {
		out = append(out, descriptorFromEntry(entry))
	}
	return out, nil
}

func descriptorFromEntry(entry Entry) Descriptor {
	return Descriptor{
		Name:       entry.FilenameString(),
		Sectors:    int(entry.TotalSectors),
		TotalBytes: -1,
		Text:       entry.RandomFlag == 0xFF,
		Month:      entry.Month,
		Day:        entry.Day,
		Year:       entry.Year,
	}
}

// Sort repacks the directory, compacting deleted/empty slots, and
// optionally sorts active entries alphabetically. See Directory.Repack.
func (e *Engine) Sort(alpha bool) error {
	return e.dir.Repack(alpha)
}

// DumpSector returns the raw 256 bytes at the given (track, sector).
func (e *Engine) DumpSector(ts TrackSector) ([]byte, error) {
	return e.ib.ReadSector(ts.Track, ts.Sector)
}

// DumpOffset returns the raw 256 bytes of the sector containing the given
// byte offset into the image, rounded down to the sector boundary.
func (e *Engine) DumpOffset(byteOffset int) ([]byte, TrackSector, error) {
	ts := e.ib.TrackSectorOf(byteOffset)
	data, err := e.ib.ReadSector(ts.Track, ts.Sector)
	return data, ts, err
}

// HostNameToFlex converts a host filename into FLEX's 8.3 on-disk name and
// extension fields, per spec.md §6: the portion before the last '.' is
// uppercased and truncated/NUL-padded to 8 bytes; the portion after the
// last '.' is uppercased and truncated/NUL-padded to 3 bytes. Absence of
// '.' yields an empty (all-NUL) extension.
func HostNameToFlex(path string) (name [8]byte, ext [3]byte) {
	base := path
	extension := ""
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			base = path[:i]
			extension = path[i+1:]
			break
		}
	}
	copy(name[:], upperTruncate(base, 8))
	copy(ext[:], upperTruncate(extension, 3))
	return name, ext
}

func upperTruncate(s string, n int) []byte {
	b := []byte(s)
	if len(b) > n {
		b = b[:n]
	}
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return b
}
