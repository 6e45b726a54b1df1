// ABOUTME: Entry point for the learnctl CLI
// ABOUTME: Terminal client for browsing courses and tracking learning progress

package main

import (
	"fmt"
	"os"

	"github.com/markalston/learnctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
