package main

import (
	"os"

	"github.com/suitetecsa/suitetecsa-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
