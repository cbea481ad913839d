// Copyright © 2026 The flextools authors.

package flex

// Config holds the policy knobs the original FLEX toolchain left as
// source-level quirks instead of documented behavior. See spec.md's Open
// Questions and SPEC_FULL.md's REDESIGN FLAGS for the reasoning behind each
// default.
type Config struct {
	// TextFlagByte is the random-file-flag byte value written into a
	// directory entry when a file is added in text mode. flexadd.c uses
	// 0xFF for text/sequential and 0x00 for binary/random; the FLEX
	// Advanced Programmer's Guide documents the reverse convention. Default
	// preserves flexadd.c's behavior: 0xFF.
	TextFlagByte byte

	// LegacyZeroEndTS, when true, reproduces flexadd.c's known-incorrect
	// behavior of leaving a directory entry's end-track/end-sector fields
	// zeroed regardless of the file's actual last sector, relying solely on
	// the total-sector count for integrity. When false, end-track/
	// end-sector are populated from the last sector actually allocated.
	// Default true (compatibility mode).
	LegacyZeroEndTS bool

	// DefaultVolNumber is used by CreateImage callers that don't specify an
	// explicit volume number (cmd/flexdsk, when no --volume flag and
	// no config file value are given).
	DefaultVolNumber uint16
}

// DefaultConfig returns the Config matching the original flexadd.c/
// flexdsk.c behavior.
func DefaultConfig() Config {
	return Config{
		TextFlagByte:     0xFF,
		LegacyZeroEndTS:  true,
		DefaultVolNumber: 1,
	}
}
