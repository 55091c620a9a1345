package main

import (
	"os"

	"github.com/AI2HU/bookapp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
