// Package main is the entry point for the janitor binary.
package main

import (
	"os"

	"rbac-janitor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
