package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/stowman/cmd/stowman"
	"github.com/arthur-debert/stowman/internal/version"
)

func main() {
	rootCmd := stowman.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "STOWMAN",
		Section: "1",
		Source:  "stowman " + version.Version,
		Manual:  "stowman manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
