// Copyright © 2026 The flextools authors.

// freelist.go contains the Free-List Manager: the disk-wide singly-linked
// chain of unallocated sectors rooted in the SIR. See spec.md §4.3. There
// is no bitmap and no coalescing: allocation is strictly the next link in
// the existing chain.
package flex

// FreeList manages the chain of unallocated sectors for an image, via its
// SIR's first-free/last-free pointers.
type FreeList struct {
	ib  *ImageBuffer
	sir *SIR
}

// NewFreeList returns a FreeList manager bound to the given image and SIR.
func NewFreeList(ib *ImageBuffer, sir *SIR) *FreeList {
	return &FreeList{ib: ib, sir: sir}
}

// Allocate removes and returns the head of the free chain. The caller is
// responsible for rewriting the returned sector's link bytes (0-1) once it
// knows what the sector should chain to; Allocate only updates the SIR's
// bookkeeping.
func (f *FreeList) Allocate() (TrackSector, error) {
	if f.sir.FreeSectors == 0 {
		return TrackSector{}, OutOfSpacef("no free sectors remain")
	}
	head := f.sir.FirstFree
	sector, err := f.ib.ReadSector(head.Track, head.Sector)
	if err != nil {
		return TrackSector{}, err
	}
	next := TrackSector{Track: sector[0], Sector: sector[1]}
	if err := f.sir.SetFreeListHead(f.ib, next); err != nil {
		return TrackSector{}, err
	}
	if err := f.sir.DecrementFreeCount(f.ib); err != nil {
		return TrackSector{}, err
	}
	return head, nil
}

// Release splices the chain headed at head (with the given tail and
// length count) onto the end of the free chain.
func (f *FreeList) Release(head, tail TrackSector, count uint16) error {
	if count == 0 {
		return nil
	}
	if f.sir.FreeSectors == 0 {
		// Free list is empty: LastFree may still point at a sector that
		// Allocate has since handed out and a caller has overwritten with
		// file data, so it cannot be spliced onto. The released chain
		// becomes the whole list instead.
		if err := f.sir.SetFreeListHead(f.ib, head); err != nil {
			return err
		}
	} else {
		last, err := f.ib.ReadSector(f.sir.LastFree.Track, f.sir.LastFree.Sector)
		if err != nil {
			return err
		}
		last[0], last[1] = head.Track, head.Sector
		if err := f.ib.WriteSector(f.sir.LastFree.Track, f.sir.LastFree.Sector, last); err != nil {
			return err
		}
	}
	if err := f.sir.SetFreeListTail(f.ib, tail); err != nil {
		return err
	}
	return f.sir.IncrementFreeCount(f.ib, count)
}
