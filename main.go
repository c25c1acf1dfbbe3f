package main

import (
	"os"

	"github.com/spigell/resumatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
