package main

import (
	"os"

	"github.com/ktanaka/shucal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
