// Command gofup uploads files to GoFile.io and tracks them in a local
// database.
package main

import (
	"fmt"
	"os"

	"github.com/gofup/gofup/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
