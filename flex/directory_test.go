// Copyright © 2026 The flextools authors.

package flex

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestEntryMarshalRoundtrip(t *testing.T) {
	buf1 := make([]byte, dirEntrySize)
	_, _ = rand.Read(buf1)
	// byte 11/12/20 are unused and always read back zero; zero them in the
	// source so the roundtrip comparison is meaningful.
	buf1[11], buf1[12], buf1[20] = 0, 0, 0

	e1 := &Entry{}
	e1.FromBytes(buf1)
	buf2 := e1.ToBytes()

	e2 := &Entry{}
	e2.FromBytes(buf2)
	if *e1 != *e2 {
		t.Errorf("Structs differ: %s", strings.Join(pretty.Diff(e1, e2), "; "))
	}
}

func TestEntryFilenameString(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"HELLO", "TXT", "HELLO.TXT"},
		{"HELLO", "", "HELLO"},
		{"A", "B", "A.B"},
	}
	for _, tt := range tests {
		var e Entry
		copy(e.Name[:], tt.name)
		copy(e.Ext[:], tt.ext)
		if got := e.FilenameString(); got != tt.want {
			t.Errorf("FilenameString() = %q, want %q", got, tt.want)
		}
	}
}

func TestStatusOf(t *testing.T) {
	if statusOf(0x00) != statusEmpty {
		t.Error("expected statusEmpty for 0x00")
	}
	if statusOf(0x80|'H') != statusDeleted {
		t.Error("expected statusDeleted for high-bit-set name byte")
	}
	if statusOf('H') != statusActive {
		t.Error("expected statusActive for plain name byte")
	}
}

func newTestDirectory(t *testing.T, sectors int) (*Directory, *ImageBuffer) {
	t.Helper()
	geom := Geometry{Tracks: 35, SectorsPerTrack: 18}
	ib := NewImageBuffer(geom)
	for s := byte(dirStartSector); s < byte(dirStartSector+sectors); s++ {
		data := make([]byte, SectorSize)
		if int(s) < dirStartSector+sectors-1 {
			data[0], data[1] = 0, s+1
		}
		if err := ib.WriteSector(0, s, data); err != nil {
			t.Fatal(err)
		}
	}
	return NewDirectory(ib), ib
}

func TestDirectoryWalkDetectsOutOfBoundsLink(t *testing.T) {
	dir, ib := newTestDirectory(t, 1)
	data, err := ib.ReadSector(0, dirStartSector)
	if err != nil {
		t.Fatal(err)
	}
	// Point the sole directory sector's link at a track beyond the image's
	// 35-track geometry.
	data[0], data[1] = 99, 1
	if err := ib.WriteSector(0, dirStartSector, data); err != nil {
		t.Fatal(err)
	}

	if _, _, err := dir.Enumerate(); !IsCorruptChain(err) {
		t.Errorf("Enumerate() with out-of-bounds link = %v, want CorruptChain", err)
	}
}

func TestDirectoryWalkDetectsSelfLink(t *testing.T) {
	dir, ib := newTestDirectory(t, 1)
	data, err := ib.ReadSector(0, dirStartSector)
	if err != nil {
		t.Fatal(err)
	}
	data[0], data[1] = 0, dirStartSector
	if err := ib.WriteSector(0, dirStartSector, data); err != nil {
		t.Fatal(err)
	}

	if _, _, err := dir.Enumerate(); !IsCorruptChain(err) {
		t.Errorf("Enumerate() with self-linking sector = %v, want CorruptChain", err)
	}
}

func TestDirectoryInsertFindDelete(t *testing.T) {
	dir, _ := newTestDirectory(t, 1)

	entry := Entry{Start: TrackSector{Track: 1, Sector: 1}, TotalSectors: 1}
	copy(entry.Name[:], "HELLO")
	copy(entry.Ext[:], "TXT")

	if err := dir.Insert(entry); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	found, _, err := dir.Find("HELLO.TXT")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.FilenameString() != "HELLO.TXT" {
		t.Errorf("Find returned %q, want HELLO.TXT", found.FilenameString())
	}

	if _, _, err := dir.Find("NOPE.TXT"); !IsNotFound(err) {
		t.Errorf("Find(missing) = %v, want NotFound", err)
	}

	deleted, err := dir.Delete("HELLO.TXT")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.FilenameString() != "HELLO.TXT" {
		t.Errorf("Delete returned %q, want HELLO.TXT", deleted.FilenameString())
	}
	if _, _, err := dir.Find("HELLO.TXT"); !IsNotFound(err) {
		t.Errorf("Find(deleted) = %v, want NotFound", err)
	}
}

// TestDirectoryFullAtCapacity exercises spec.md §8's directory-exhaustion
// boundary: a single directory sector holds 10 entries (dirEntriesPerSector);
// the 11th insert must fail DirectoryFull.
func TestDirectoryFullAtCapacity(t *testing.T) {
	dir, _ := newTestDirectory(t, 1)
	for i := 0; i < dirEntriesPerSector; i++ {
		var entry Entry
		name := string(rune('A' + i))
		copy(entry.Name[:], name)
		entry.Start = TrackSector{Track: 1, Sector: 1}
		entry.TotalSectors = 1
		if err := dir.Insert(entry); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}
	var overflow Entry
	copy(overflow.Name[:], "OVERFLOW")
	if err := dir.Insert(overflow); !IsDirectoryFull(err) {
		t.Errorf("Insert past capacity = %v, want DirectoryFull", err)
	}
}

func TestDirectoryRepackCompactsAndPreservesEntries(t *testing.T) {
	dir, _ := newTestDirectory(t, 1)
	names := []string{"CCCCC", "AAAAA", "BBBBB"}
	for _, n := range names {
		var entry Entry
		copy(entry.Name[:], n)
		entry.Start = TrackSector{Track: 1, Sector: 1}
		entry.TotalSectors = 1
		if err := dir.Insert(entry); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := dir.Delete("BBBBB"); err != nil {
		t.Fatal(err)
	}

	if err := dir.Repack(true); err != nil {
		t.Fatalf("Repack: %v", err)
	}

	entries, _, err := dir.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Enumerate() returned %d entries, want 2", len(entries))
	}
	if entries[0].FilenameString() != "AAAAA" || entries[1].FilenameString() != "CCCCC" {
		t.Errorf("Repack(alpha=true) order = %q, %q; want AAAAA, CCCCC", entries[0].FilenameString(), entries[1].FilenameString())
	}
}

func TestDirectoryRepackAtExactCapacitySucceeds(t *testing.T) {
	dir, _ := newTestDirectory(t, 1)
	for i := 0; i < dirEntriesPerSector; i++ {
		var entry Entry
		name := string(rune('A' + i))
		copy(entry.Name[:], name)
		if err := dir.Insert(entry); err != nil {
			t.Fatal(err)
		}
	}
	before, _, err := dir.Enumerate()
	if err != nil {
		t.Fatal(err)
	}

	// Manually corrupt one entry's capacity expectation isn't possible
	// without a second directory sector; instead this documents the
	// expected behavior at exactly full capacity: Repack must still
	// succeed when count == capacity.
	if err := dir.Repack(false); err != nil {
		t.Fatalf("Repack at exact capacity should succeed: %v", err)
	}
	after, _, err := dir.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != len(after) {
		t.Errorf("Repack at capacity changed entry count: %d != %d", len(before), len(after))
	}
}
