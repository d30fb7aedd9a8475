package main

import (
	"os"

	"github.com/dimdasci/pdfs-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
