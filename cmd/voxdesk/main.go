// Command voxdesk is a voice support assistant that answers customer
// questions from a knowledge base of product documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
