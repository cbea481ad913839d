// Copyright © 2026 The flextools authors.

package flex

import "testing"

func TestImageBufferReadWriteSectorRoundtrip(t *testing.T) {
	geom := Geometry{Tracks: 35, SectorsPerTrack: 18}
	ib := NewImageBuffer(geom)

	want := make([]byte, SectorSize)
	for i := range want {
		want[i] = byte(i)
	}
	if err := ib.WriteSector(3, 7, want); err != nil {
		t.Fatalf("WriteSector: %v", err)
	}
	got, err := ib.ReadSector(3, 7)
	if err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadSector returned different bytes than written")
	}
}

func TestImageBufferReadSectorReturnsACopy(t *testing.T) {
	geom := Geometry{Tracks: 35, SectorsPerTrack: 18}
	ib := NewImageBuffer(geom)
	got, err := ib.ReadSector(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	got[0] = 0xFF
	got2, err := ib.ReadSector(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got2[0] == 0xFF {
		t.Error("ReadSector aliased the underlying buffer; mutation leaked back")
	}
}

func TestImageBufferValidateAddress(t *testing.T) {
	geom := Geometry{Tracks: 35, SectorsPerTrack: 18}
	ib := NewImageBuffer(geom)

	if _, err := ib.ReadSector(35, 1); !IsBadAddress(err) {
		t.Errorf("ReadSector(track out of range) = %v, want BadAddress", err)
	}
	if _, err := ib.ReadSector(0, 0); !IsBadAddress(err) {
		t.Errorf("ReadSector(sector 0) = %v, want BadAddress", err)
	}
	if _, err := ib.ReadSector(0, 19); !IsBadAddress(err) {
		t.Errorf("ReadSector(sector out of range) = %v, want BadAddress", err)
	}
}

func TestTrackSectorOf(t *testing.T) {
	geom := Geometry{Tracks: 35, SectorsPerTrack: 18}
	ib := NewImageBuffer(geom)

	tests := []struct {
		offset int
		want   TrackSector
	}{
		{0, TrackSector{Track: 0, Sector: 1}},
		{255, TrackSector{Track: 0, Sector: 1}},
		{256, TrackSector{Track: 0, Sector: 2}},
		{18 * 256, TrackSector{Track: 1, Sector: 1}},
	}
	for _, tt := range tests {
		if got := ib.TrackSectorOf(tt.offset); got != tt.want {
			t.Errorf("TrackSectorOf(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestTrackSectorIsNil(t *testing.T) {
	if !(TrackSector{}).IsNil() {
		t.Error("zero-value TrackSector should be nil")
	}
	if (TrackSector{Track: 1}).IsNil() {
		t.Error("TrackSector{Track:1} should not be nil")
	}
}

func TestGeometryBytes(t *testing.T) {
	g := Geometry{Tracks: 35, SectorsPerTrack: 18}
	if got, want := g.Bytes(), 35*18*SectorSize; got != want {
		t.Errorf("Bytes() = %d, want %d", got, want)
	}
}
