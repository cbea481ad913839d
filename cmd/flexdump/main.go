// Copyright © 2026 The flextools authors.

// flexdump prints a hex-plus-ASCII dump of a single sector from a FLEX
// disk image, addressed either by (track, sector) or by byte offset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linuxha/flextools/flex"
	"github.com/linuxha/flextools/internal/fsutil"
	"github.com/linuxha/flextools/internal/hexdump"
)

var (
	track  int
	sector int
	offset string
)

var rootCmd = &cobra.Command{
	Use:   "flexdump <image-file>",
	Short: "hex-dump a sector from a FLEX disk image",
	Long: `flexdump prints the 256 bytes of a single sector as a hex and
ASCII dump, addressed either by --track/--sector or by --offset (decimal
or 0x-prefixed hex byte offset into the image).

flexdump -t 0 -s 3 disk.dsk
flexdump --offset 0x310 disk.dsk
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDump(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "flexdump: %s: %s\n", flex.Kind(err), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().IntVarP(&track, "track", "t", -1, "track number")
	rootCmd.Flags().IntVarP(&sector, "sector", "s", -1, "sector number")
	rootCmd.Flags().StringVarP(&offset, "offset", "o", "", "byte offset into the image (decimal or 0x-prefixed hex)")
}

func runDump(imagePath string) error {
	if offset == "" && (track < 0 || sector < 0) {
		return fmt.Errorf("must specify either --offset, or both --track and --sector")
	}
	if offset != "" && (track >= 0 || sector >= 0) {
		return fmt.Errorf("specify --offset or --track/--sector, not both")
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return flex.IoErrorf(err, "opening image file %q", imagePath)
	}
	defer f.Close()

	engine, err := flex.LoadEngine(f, flex.DefaultConfig())
	if err != nil {
		return err
	}

	var data []byte
	var ts flex.TrackSector
	if offset != "" {
		addr, err := fsutil.ParseAddress(offset)
		if err != nil {
			return err
		}
		data, ts, err = engine.DumpOffset(addr)
		if err != nil {
			return err
		}
	} else {
		ts = flex.TrackSector{Track: byte(track), Sector: byte(sector)}
		data, err = engine.DumpSector(ts)
		if err != nil {
			return err
		}
	}

	fmt.Printf("track %d, sector %d\n", ts.Track, ts.Sector)
	fmt.Print(hexdump.Render(data, 0))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
