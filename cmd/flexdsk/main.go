// Copyright © 2026 The flextools authors.

// flexdsk creates a new, empty FLEX disk image.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/linuxha/flextools/flex"
	"github.com/linuxha/flextools/internal/fsutil"
)

var (
	tracks      int
	sectors     int
	label       string
	volNumber   int
	bootFile    string
	force       bool
)

var rootCmd = &cobra.Command{
	Use:   "flexdsk <new-image-file>",
	Short: "create a new FLEX disk image",
	Long: `flexdsk creates a brand-new, zeroed FLEX disk image: an empty
directory, a fully-populated free-sector chain, and an optional boot
loader.

flexdsk -t 35 -s 18 -l MYDISK newdisk.dsk
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCreate(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "flexdsk: %s: %s\n", flex.Kind(err), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().IntVarP(&tracks, "tracks", "t", 35, "number of tracks")
	rootCmd.Flags().IntVarP(&sectors, "sectors", "s", 18, "sectors per track")
	rootCmd.Flags().StringVarP(&label, "label", "l", "", "volume label")
	rootCmd.Flags().IntVarP(&volNumber, "volume", "n", 0, "volume number (1-255); 0 uses the configured default")
	rootCmd.Flags().StringVarP(&bootFile, "boot", "b", "", "boot loader file (512 bytes, truncated/padded)")
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing image file")

	viper.SetConfigName(".flextools")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
	_ = viper.ReadInConfig() // config is optional; flags always win
}

func runCreate(path string) error {
	cfg := flex.DefaultConfig()
	if viper.IsSet("default_vol_number") {
		cfg.DefaultVolNumber = uint16(viper.GetInt("default_vol_number"))
	}

	vn := volNumber
	if vn == 0 {
		vn = int(cfg.DefaultVolNumber)
	}

	vlabel := label
	if viper.GetString("label_case") == "upper" {
		vlabel = strings.ToUpper(vlabel)
	}

	var boot []byte
	if bootFile != "" {
		data, err := fsutil.FileContentsOrStdIn(bootFile)
		if err != nil {
			return flex.IoErrorf(err, "reading boot loader %q", bootFile)
		}
		boot = data
	}

	geom := flex.Geometry{Tracks: byte(tracks), SectorsPerTrack: byte(sectors)}
	engine, err := flex.CreateImage(geom, vlabel, uint16(vn), boot, time.Now(), cfg)
	if err != nil {
		return err
	}

	if !force {
		if _, statErr := os.Stat(path); statErr == nil {
			return fmt.Errorf("refusing to overwrite existing file %q without --force", path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return flex.IoErrorf(err, "creating image file %q", path)
	}
	defer f.Close()

	if _, err := engine.Flush(f); err != nil {
		return flex.IoErrorf(err, "writing image file %q", path)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
