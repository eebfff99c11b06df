// Command esmconv converts Xbox 360 (big-endian) ESM plugin files into PC
// (little-endian) ESM plugin files. Command dispatch, flag parsing, and
// terminal output are peripheral to the converter core (spec.md §1) and
// live entirely in this package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "esmconv",
	Short: "Convert Bethesda ESM plugins between Xbox 360 and PC endianness",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
