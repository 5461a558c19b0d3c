package main

import (
	"os"

	"github.com/JonMunkholm/fulfillment/internal/cli"
	_ "github.com/JonMunkholm/fulfillment/internal/core/pages" // Register all pages
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
