package main

import (
	"os"

	"github.com/rustyeddy/smatrader/cmd/smabot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
