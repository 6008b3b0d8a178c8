// Command parcelctl queries a cadastral dataset from the command line without running the
// HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
