package main

import (
	"os"

	"github.com/lugondev/go-swaprelay/cmd/swaprelay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
