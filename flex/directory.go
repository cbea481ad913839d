// Copyright © 2026 The flextools authors.

// directory.go contains the Directory Manager: walking the directory
// sector chain, enumerating entries, finding free slots, inserting,
// deleting, and repacking/sorting. See spec.md §3 and §4.4.
package flex

import (
	"encoding/binary"
	"sort"
)

const (
	dirStartTrack       = 0
	dirStartSector      = 5
	dirEntrySize        = 24
	dirEntriesPerSector = 10
	dirFirstEntryOffset = 16
)

// Entry is a single 24-byte FLEX directory entry.
type Entry struct {
	Name         [8]byte
	Ext          [3]byte
	Start        TrackSector
	End          TrackSector
	TotalSectors uint16
	RandomFlag   byte
	Month        byte
	Day          byte
	Year         byte
}

// entryStatus classifies a raw directory-slot's first filename byte.
type entryStatus int

const (
	statusEmpty entryStatus = iota
	statusActive
	statusDeleted
)

func statusOf(firstNameByte byte) entryStatus {
	switch {
	case firstNameByte == 0x00:
		return statusEmpty
	case firstNameByte&0x80 != 0:
		return statusDeleted
	default:
		return statusActive
	}
}

// ToBytes marshals the entry to its 24-byte on-disk representation.
func (e Entry) ToBytes() []byte {
	buf := make([]byte, dirEntrySize)
	copyBytes(buf[0:8], e.Name[:])
	copyBytes(buf[8:11], e.Ext[:])
	// buf[11:13] unused, left zero.
	buf[13] = e.Start.Track
	buf[14] = e.Start.Sector
	buf[15] = e.End.Track
	buf[16] = e.End.Sector
	binary.BigEndian.PutUint16(buf[17:19], e.TotalSectors)
	buf[19] = e.RandomFlag
	// buf[20] unused, left zero.
	buf[21] = e.Month
	buf[22] = e.Day
	buf[23] = e.Year
	return buf
}

// FromBytes unmarshals an entry from its 24-byte on-disk representation.
func (e *Entry) FromBytes(data []byte) {
	copyBytes(e.Name[:], data[0:8])
	copyBytes(e.Ext[:], data[8:11])
	e.Start = TrackSector{Track: data[13], Sector: data[14]}
	e.End = TrackSector{Track: data[15], Sector: data[16]}
	e.TotalSectors = binary.BigEndian.Uint16(data[17:19])
	e.RandomFlag = data[19]
	e.Month = data[21]
	e.Day = data[22]
	e.Year = data[23]
}

// status returns the entry's lifecycle status from its raw name byte.
func (e Entry) status() entryStatus {
	return statusOf(e.Name[0])
}

// FilenameString returns "NAME.EXT" (or "NAME" if ext is empty), trimmed
// of NUL/space padding.
func (e Entry) FilenameString() string {
	name := trimPadding(e.Name[:])
	ext := trimPadding(e.Ext[:])
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func trimPadding(b []byte) string {
	n := len(b)
	for n > 0 && (b[n-1] == 0 || b[n-1] == ' ') {
		n--
	}
	return string(b[:n])
}

// slot identifies a directory entry's on-disk location: the sector
// holding it and its index (0-9) within that sector.
type slot struct {
	track, sector byte
	index         int
}

// Directory manages the directory sector chain rooted at (0, 5).
type Directory struct {
	ib *ImageBuffer
}

// NewDirectory returns a Directory manager bound to the given image.
func NewDirectory(ib *ImageBuffer) *Directory {
	return &Directory{ib: ib}
}

// walk visits every directory sector in chain order, calling visit with
// each sector's raw bytes and its address. Termination is a (0,0) link; a
// self-link, a link back to an already-visited sector, or a link outside
// the image's geometry is CorruptChain.
func (d *Directory) walk(visit func(track, sector byte, data []byte) error) error {
	track, sector := byte(dirStartTrack), byte(dirStartSector)
	visited := map[TrackSector]bool{}
	maxSectors := int(d.ib.geom.Tracks) * int(d.ib.geom.SectorsPerTrack)
	for count := 0; ; count++ {
		ts := TrackSector{Track: track, Sector: sector}
		if ts.IsNil() {
			return nil
		}
		if visited[ts] {
			return CorruptChainf("directory chain revisits (%d,%d)", track, sector)
		}
		if count > maxSectors {
			return CorruptChainf("directory chain exceeds %d sectors without terminating", maxSectors)
		}
		if !d.ib.InBounds(track, sector) {
			return CorruptChainf("directory chain links to out-of-bounds sector (%d,%d)", track, sector)
		}
		visited[ts] = true
		data, err := d.ib.ReadSector(track, sector)
		if err != nil {
			return err
		}
		if err := visit(track, sector, data); err != nil {
			return err
		}
		nextTrack, nextSector := data[0], data[1]
		if nextTrack == track && nextSector == sector {
			return CorruptChainf("directory sector (%d,%d) self-links", track, sector)
		}
		track, sector = nextTrack, nextSector
	}
}

// entryOffset returns the byte offset of slot index within a directory
// sector (0-based, 0..9).
func entryOffset(index int) int {
	return dirFirstEntryOffset + index*dirEntrySize
}

// Enumerate returns every active entry, together with its on-disk slot.
// Deleted and empty slots are skipped but not reported here; use
// firstFreeSlot to find an insertion point.
func (d *Directory) Enumerate() ([]Entry, []slot, error) {
	var entries []Entry
	var slots []slot
	err := d.walk(func(track, sector byte, data []byte) error {
		for i := 0; i < dirEntriesPerSector; i++ {
			off := entryOffset(i)
			var e Entry
			e.FromBytes(data[off : off+dirEntrySize])
			if e.status() == statusActive {
				entries = append(entries, e)
				slots = append(slots, slot{track: track, sector: sector, index: i})
			}
		}
		return nil
	})
	return entries, slots, err
}

// firstFreeSlot returns the first empty-or-deleted slot in walk order.
func (d *Directory) firstFreeSlot() (slot, bool, error) {
	var found slot
	ok := false
	err := d.walk(func(track, sector byte, data []byte) error {
		if ok {
			return nil
		}
		for i := 0; i < dirEntriesPerSector; i++ {
			off := entryOffset(i)
			switch statusOf(data[off]) {
			case statusEmpty, statusDeleted:
				found = slot{track: track, sector: sector, index: i}
				ok = true
				return nil
			}
		}
		return nil
	})
	return found, ok, err
}

// Insert writes entry into the first empty-or-deleted slot in walk order.
// It fails with DirectoryFull if no such slot exists.
func (d *Directory) Insert(entry Entry) error {
	s, ok, err := d.firstFreeSlot()
	if err != nil {
		return err
	}
	if !ok {
		return DirectoryFullf("no free directory slot available")
	}
	data, err := d.ib.ReadSector(s.track, s.sector)
	if err != nil {
		return err
	}
	off := entryOffset(s.index)
	copy(data[off:off+dirEntrySize], entry.ToBytes())
	return d.ib.WriteSector(s.track, s.sector, data)
}

// Find looks up an active entry by filename, returning it and its slot.
func (d *Directory) Find(filename string) (Entry, slot, error) {
	entries, slots, err := d.Enumerate()
	if err != nil {
		return Entry{}, slot{}, err
	}
	for i, e := range entries {
		if e.FilenameString() == filename {
			return e, slots[i], nil
		}
	}
	return Entry{}, slot{}, NotFoundf("file %q not found", filename)
}

// Delete marks the named file's slot empty (first filename byte = 0x00)
// and returns its former Entry, for the caller to release its chain via
// FreeList. It does not itself touch the free list: that coupling belongs
// to the Engine, which holds both managers.
func (d *Directory) Delete(filename string) (Entry, error) {
	entry, s, err := d.Find(filename)
	if err != nil {
		return Entry{}, err
	}
	data, err := d.ib.ReadSector(s.track, s.sector)
	if err != nil {
		return Entry{}, err
	}
	off := entryOffset(s.index)
	data[off] = 0x00
	if err := d.ib.WriteSector(s.track, s.sector, data); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Repack rewrites the directory chain from the start, compacting out
// deleted and empty slots. If alpha is true, active entries are sorted
// lexicographically by filename bytes (name then extension, unsigned
// comparison) before being rewritten; otherwise their relative order is
// preserved. Repack never adds directory sectors: it ends the chain with a
// (0,0) link at the last sector that holds entries, and the later sectors
// of the old chain are zeroed and left unlinked. It fails with
// DirectoryFull (without writing anything) if the existing chain has too
// few sectors to hold every active entry.
func (d *Directory) Repack(alpha bool) error {
	entries, _, err := d.Enumerate()
	if err != nil {
		return err
	}

	// Walk the existing chain once to collect sector addresses and their
	// next-links, without mutating anything yet, so a DirectoryFull
	// failure leaves the directory untouched (SPEC_FULL.md's REDESIGN FLAGS
	// resolution for the undersized-chain open question).
	var dirSectors []TrackSector
	var nextLinks []TrackSector
	err = d.walk(func(track, sector byte, data []byte) error {
		dirSectors = append(dirSectors, TrackSector{Track: track, Sector: sector})
		nextLinks = append(nextLinks, TrackSector{Track: data[0], Sector: data[1]})
		return nil
	})
	if err != nil {
		return err
	}

	capacity := len(dirSectors) * dirEntriesPerSector
	if len(entries) > capacity {
		return DirectoryFullf("directory chain has room for %d entries; %d are active", capacity, len(entries))
	}

	if alpha {
		sort.SliceStable(entries, func(i, j int) bool {
			return lessEntry(entries[i], entries[j])
		})
	}

	for si, ts := range dirSectors {
		data, err := d.ib.ReadSector(ts.Track, ts.Sector)
		if err != nil {
			return err
		}
		// Zero the payload (everything past the next-link bytes), then
		// re-stamp either the preserved next-link or (0,0) if this is
		// where the sequence of entries runs out.
		for i := 2; i < SectorSize; i++ {
			data[i] = 0
		}
		base := si * dirEntriesPerSector
		for i := 0; i < dirEntriesPerSector; i++ {
			idx := base + i
			if idx >= len(entries) {
				break
			}
			off := entryOffset(i)
			copy(data[off:off+dirEntrySize], entries[idx].ToBytes())
		}
		if base+dirEntriesPerSector < len(entries) {
			data[0], data[1] = nextLinks[si].Track, nextLinks[si].Sector
		} else {
			data[0], data[1] = 0, 0
		}
		if err := d.ib.WriteSector(ts.Track, ts.Sector, data); err != nil {
			return err
		}
	}
	return nil
}

// lessEntry compares two entries by filename bytes (unsigned), then
// extension bytes (unsigned), per spec.md §4.4.
func lessEntry(a, b Entry) bool {
	for i := 0; i < 8; i++ {
		if a.Name[i] != b.Name[i] {
			return a.Name[i] < b.Name[i]
		}
	}
	for i := 0; i < 3; i++ {
		if a.Ext[i] != b.Ext[i] {
			return a.Ext[i] < b.Ext[i]
		}
	}
	return false
}
