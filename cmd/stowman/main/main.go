package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/stowman/cmd/stowman"
	"github.com/arthur-debert/stowman/pkg/ui/output/styles"
)

func main() {
	rootCmd := stowman.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Commands that already explained the failure only set the exit code
		if !stowman.IsReported(err) {
			errorStyle := styles.GetStyle("Error")
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			fmt.Fprintln(os.Stderr)
			_ = rootCmd.Help()
		}
		os.Exit(1)
	}
}
