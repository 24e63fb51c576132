// Command seerlink runs the Jellyseerr companion service for the browser
// extension and offers one-shot lookups from the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
