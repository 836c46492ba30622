// Command guidectl drives the guide from a terminal: walk the menu, ask
// free-text questions, inspect relevance scores and smoke-test providers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/wolfman30/foundry-guide/cmd/mainconfig"
	appconfig "github.com/wolfman30/foundry-guide/internal/config"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	root := newRootCmd(&env{cfg: appconfig.Load(), loadAWS: mainconfig.LoadAWSConfig})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
