// Package main is the entry point for the ctxpack CLI tool.
package main

import (
	"github.com/hargabyte/ctxpack/internal/cmd"
)

func main() {
	cmd.Execute()
}
