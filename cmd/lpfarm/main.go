package main

import (
	"os"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/cmd/lpfarm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
