package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/izu-labs/izuchat/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// A .env in the working directory is a convenience for local runs;
	// absence is not an error.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
