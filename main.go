package main

import (
	"os"

	"github.com/BhavyaPagadala/urbix/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
