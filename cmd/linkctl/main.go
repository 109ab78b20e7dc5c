// Command linkctl administers a linkgate deployment: it applies database
// migrations and talks to a running server over gRPC.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
