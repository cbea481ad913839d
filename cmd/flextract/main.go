// Copyright © 2026 The flextools authors.

// flextract extracts a file from a FLEX disk image.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linuxha/flextools/flex"
	"github.com/linuxha/flextools/internal/fsutil"
)

var (
	asText        bool
	checkSequence bool
	outPath       string
	force         bool
)

var rootCmd = &cobra.Command{
	Use:   "flextract <image-file> <flex-name>",
	Short: "extract a file from a FLEX disk image",
	Long: `flextract reads a file's sector chain out of a FLEX disk image
and writes its content to stdout or to -o.

flextract -t disk.dsk HELLO.TXT -o hello.txt
`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExtract(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "flextract: %s: %s\n", flex.Kind(err), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&asText, "text", "t", false, "extract as text (apply the FLEX text codec)")
	rootCmd.Flags().BoolVarP(&checkSequence, "check-sequence", "c", false, "verify each sector's logical record number while reading")
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file, or - for stdout")
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing output file")
}

func runExtract(imagePath, flexName string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return flex.IoErrorf(err, "opening image file %q", imagePath)
	}
	defer f.Close()

	engine, err := flex.LoadEngine(f, flex.DefaultConfig())
	if err != nil {
		return err
	}

	mode := flex.Binary
	if asText {
		mode = flex.Text
	}

	info, err := engine.ExtractFile(flexName, mode, checkSequence)
	if err != nil {
		// Still write out whatever partial content was recovered before
		// reporting the error, matching the original tool's behavior of
		// extracting as much of a corrupt chain as it could reach.
		if writeErr := fsutil.WriteOutput(outPath, info.Data, force); writeErr != nil {
			return writeErr
		}
		return err
	}

	return fsutil.WriteOutput(outPath, info.Data, force)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
