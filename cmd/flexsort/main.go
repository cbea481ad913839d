// Copyright © 2026 The flextools authors.

// flexsort repacks a FLEX disk image's directory, compacting deleted
// slots, and optionally sorts it alphabetically.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linuxha/flextools/flex"
)

var alpha bool

var rootCmd = &cobra.Command{
	Use:   "flexsort <image-file>",
	Short: "repack (and optionally sort) a FLEX disk image's directory",
	Long: `flexsort compacts a FLEX disk image's directory, removing
deleted-entry gaps. With -a, it also sorts the remaining entries
alphabetically by name then extension.

flexsort -a disk.dsk
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSort(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "flexsort: %s: %s\n", flex.Kind(err), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&alpha, "alpha", "a", false, "sort entries alphabetically (default is repack-only)")
}

func runSort(imagePath string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return flex.IoErrorf(err, "opening image file %q", imagePath)
	}
	engine, err := flex.LoadEngine(f, flex.DefaultConfig())
	f.Close()
	if err != nil {
		return err
	}

	if err := engine.Sort(alpha); err != nil {
		return err
	}

	out, err := os.Create(imagePath)
	if err != nil {
		return flex.IoErrorf(err, "rewriting image file %q", imagePath)
	}
	defer out.Close()
	if _, err := engine.Flush(out); err != nil {
		return flex.IoErrorf(err, "writing image file %q", imagePath)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
