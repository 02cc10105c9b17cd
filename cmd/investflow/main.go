package main

import (
	"os"

	"github.com/rustyeddy/investflow/cmd/investflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
