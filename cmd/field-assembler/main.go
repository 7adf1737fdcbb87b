// Package main provides the CLI of field-assembler.
//
// The engine itself is a library; the CLI inspects the configuration and
// descriptor files an application would load:
//   - check validates descriptor files
//   - containers lists the declared constant containers
//   - config prints the effective configuration
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
