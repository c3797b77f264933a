// Command wsd runs the workspace object store's JSON-RPC/HTTP server.
package main

import (
	"os"

	"github.com/wsobjects/wsd/cmd/wsd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
