// Package main runs the account API.
package main

import (
	"os"

	"github.com/go-petr/pet-account/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
