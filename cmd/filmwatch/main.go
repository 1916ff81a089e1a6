// Command filmwatch is the operator CLI for the filmwatch daemon: config
// management, registry inspection, manual sweeps, and notification tests.
package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
