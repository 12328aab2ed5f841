// Command vortex runs the vortex HTTP/1.x server, binding server.Config
// from CLI flags via cobra.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
