// Copyright © 2026 The flextools authors.

// flexadd adds a file to an existing FLEX disk image.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/linuxha/flextools/flex"
	"github.com/linuxha/flextools/internal/fsutil"
)

var asText bool

var rootCmd = &cobra.Command{
	Use:   "flexadd <image-file> <flex-name> <source-file>",
	Short: "add a file to a FLEX disk image",
	Long: `flexadd imports a host file into a FLEX disk image as a new
directory entry and sector chain.

flexadd -t disk.dsk HELLO.TXT hello.txt
`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAdd(args[0], args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "flexadd: %s: %s\n", flex.Kind(err), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&asText, "text", "t", false, "import as a text file (apply the FLEX text codec)")
}

func runAdd(imagePath, flexName, sourcePath string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return flex.IoErrorf(err, "opening image file %q", imagePath)
	}
	engine, err := flex.LoadEngine(f, flex.DefaultConfig())
	f.Close()
	if err != nil {
		return err
	}

	contents, err := fsutil.FileContentsOrStdIn(sourcePath)
	if err != nil {
		return flex.IoErrorf(err, "reading source file %q", sourcePath)
	}

	if err := engine.AddFile(flexName, contents, asText, time.Now()); err != nil {
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
