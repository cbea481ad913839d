// Copyright © 2026 The flextools authors.

// flexcat lists the catalog (directory) of a FLEX disk image.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linuxha/flextools/flex"
	"github.com/linuxha/flextools/internal/hexdump"
)

var long bool
var dump bool

var rootCmd = &cobra.Command{
	Use:     "flexcat <image-file>",
	Aliases: []string{"cat", "ls"},
	Short:   "list the files on a FLEX disk image",
	Long: `flexcat prints the catalog of a FLEX disk image: one line per
active directory entry.

flexcat -l disk.dsk
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCat(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "flexcat: %s: %s\n", flex.Kind(err), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&long, "long", "l", false, "include sector count and modification date")
	rootCmd.Flags().BoolVarP(&dump, "dump", "x", false, "hex-dump each file's content below its listing (implies --long)")
}

func runCat(imagePath string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return flex.IoErrorf(err, "opening image file %q", imagePath)
	}
	defer f.Close()

	engine, err := flex.LoadEngine(f, flex.DefaultConfig())
	if err != nil {
		return err
	}

	for _, w := range engine.Warnings {
		fmt.Fprintf(os.Stderr, "flexcat: warning: %s\n", w.Err)
	}

	descriptors, err := engine.List()
	if err != nil {
		return err
	}

	sir := engine.SIR()
	if long || dump {
		fmt.Printf("volume %q (#%d), %d free sectors\n", sir.VolumeLabelString(), sir.VolumeNumber, sir.FreeSectors)
	}

	for _, d := range descriptors {
		if long || dump {
			kind := "B"
			if d.Text {
				kind = "T"
			}
			fmt.Printf("%-12s %s %4d sectors  %02d/%02d/%02d\n", d.Name, kind, d.Sectors, d.Month, d.Day, d.Year)
		} else {
			fmt.Println(d.Name)
		}
		if dump {
			info, err := engine.ExtractFile(d.Name, flex.Binary, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "flexcat: %s: %s: %s\n", d.Name, flex.Kind(err), err)
				continue
			}
			fmt.Print(hexdump.Render(info.Data, 0))
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
