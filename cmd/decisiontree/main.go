package main

import (
	"os"

	"github.com/solatis/decisiontree/cmd/decisiontree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
