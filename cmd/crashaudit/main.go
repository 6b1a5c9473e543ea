// Command crashaudit audits, profiles and cleans crash report CSV files from
// the command line.
package main

import (
	"fmt"
	"os"

	_ "github.com/JonMunkholm/crashaudit/internal/core/tables" // Register all datasets
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
