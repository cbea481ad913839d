// Copyright © 2026 The flextools authors.

// sir.go contains the SIR Manager: the parsed view of the 24-byte System
// Information Record at track 0, sector 3, offset 16. See spec.md §3 and
// §4.2.
package flex

import (
	"encoding/binary"
	"fmt"
)

// SIR is the parsed System Information Record. It is a non-owning
// projection: mutations go through its methods, and sync persists it back
// into the owning ImageBuffer.
type SIR struct {
	VolumeLabel  [11]byte
	VolumeNumber uint16
	FirstFree    TrackSector
	LastFree     TrackSector
	FreeSectors  uint16
	Month        byte
	Day          byte
	Year         byte // year mod 100
	EndTrack     byte
	EndSector    byte
}

// copyBytes is just like the builtin copy, but checks that dst and src
// have the same length, panicking otherwise: a length mismatch here can
// only be a programming error in this package, never bad input.
func copyBytes(dst, src []byte) int {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("copyBytes called with differing lengths %d and %d", len(dst), len(src)))
	}
	return copy(dst, src)
}

// ToSector marshals the SIR to its 24-byte on-disk representation.
func (s SIR) ToSector() []byte {
	buf := make([]byte, sirSize)
	copyBytes(buf[0:11], s.VolumeLabel[:])
	binary.BigEndian.PutUint16(buf[11:13], s.VolumeNumber)
	buf[13] = s.FirstFree.Track
	buf[14] = s.FirstFree.Sector
	buf[15] = s.LastFree.Track
	buf[16] = s.LastFree.Sector
	binary.BigEndian.PutUint16(buf[17:19], s.FreeSectors)
	buf[19] = s.Month
	buf[20] = s.Day
	buf[21] = s.Year
	buf[22] = s.EndTrack
	buf[23] = s.EndSector
	return buf
}

// FromSector unmarshals the SIR from its 24-byte on-disk representation.
func (s *SIR) FromSector(data []byte) error {
	if len(data) != sirSize {
		return BadGeometryf("SIR.FromSector expects exactly %d bytes; got %d", sirSize, len(data))
	}
	copyBytes(s.VolumeLabel[:], data[0:11])
	s.VolumeNumber = binary.BigEndian.Uint16(data[11:13])
	s.FirstFree = TrackSector{Track: data[13], Sector: data[14]}
	s.LastFree = TrackSector{Track: data[15], Sector: data[16]}
	s.FreeSectors = binary.BigEndian.Uint16(data[17:19])
	s.Month = data[19]
	s.Day = data[20]
	s.Year = data[21]
	s.EndTrack = data[22]
	s.EndSector = data[23]
	return nil
}

// ValidateDate reports a DateOutOfRange warning (never a hard error, per
// spec.md §7) if the creation date's fields are out of the plausible
// range: year (stored mod 100) above 99, month outside 1-12, or day
// outside 1-31.
func (s SIR) ValidateDate() error {
	if s.Year > 99 {
		return DateOutOfRangef("SIR creation year %d out of range [0,99]", s.Year)
	}
	if s.Month < 1 || s.Month > 12 {
		return DateOutOfRangef("SIR creation month %d out of range [1,12]", s.Month)
	}
	if s.Day < 1 || s.Day > 31 {
		return DateOutOfRangef("SIR creation day %d out of range [1,31]", s.Day)
	}
	return nil
}

// readSIR reads and parses the SIR from its fixed location.
func readSIR(ib *ImageBuffer) (*SIR, error) {
	sector, err := ib.ReadSector(sirTrack, sirSector)
	if err != nil {
		return nil, err
	}
	sir := &SIR{}
	if err := sir.FromSector(sector[sirOffset : sirOffset+sirSize]); err != nil {
		return nil, err
	}
	return sir, nil
}

// sync persists sir into ib at its fixed location, preserving the rest of
// track 0, sector 3's bytes (which hold no other fields, but a future
// format quirk should not get clobbered by assuming otherwise).
func (s *SIR) sync(ib *ImageBuffer) error {
	sector, err := ib.ReadSector(sirTrack, sirSector)
	if err != nil {
		return err
	}
	copy(sector[sirOffset:sirOffset+sirSize], s.ToSector())
	return ib.WriteSector(sirTrack, sirSector, sector)
}

// SetFreeListHead sets the SIR's first-free pointer and persists it.
func (s *SIR) SetFreeListHead(ib *ImageBuffer, head TrackSector) error {
	s.FirstFree = head
	return s.sync(ib)
}

// SetFreeListTail sets the SIR's last-free pointer and persists it.
func (s *SIR) SetFreeListTail(ib *ImageBuffer, tail TrackSector) error {
	s.LastFree = tail
	return s.sync(ib)
}

// IncrementFreeCount adds n to the SIR's free-sector count and persists it.
func (s *SIR) IncrementFreeCount(ib *ImageBuffer, n uint16) error {
	s.FreeSectors += n
	return s.sync(ib)
}

// DecrementFreeCount subtracts one from the SIR's free-sector count and
// persists it.
func (s *SIR) DecrementFreeCount(ib *ImageBuffer) error {
	s.FreeSectors--
	return s.sync(ib)
}

// SetCreationDate sets the SIR's creation date fields and persists them.
// year should already be mod 100.
func (s *SIR) SetCreationDate(ib *ImageBuffer, month, day, year byte) error {
	s.Month, s.Day, s.Year = month, day, year
	return s.sync(ib)
}

// VolumeLabelString returns the volume label trimmed of trailing spaces
// and NULs.
func (s SIR) VolumeLabelString() string {
	n := len(s.VolumeLabel)
	for n > 0 && (s.VolumeLabel[n-1] == ' ' || s.VolumeLabel[n-1] == 0) {
		n--
	}
	return string(s.VolumeLabel[:n])
}

// paddedVolumeLabel truncates label to 11 bytes and space-pads it, per
// spec.md §4.2 ("truncated to 11 bytes, space-padded").
func paddedVolumeLabel(label string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	b := []byte(label)
	if len(b) > 11 {
		b = b[:11]
	}
	copy(out[:], b)
	return out
}
