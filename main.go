// Package main provides the entry point for tracehm.
// tracehm is a trace-driven timing simulator for a flat hybrid memory.
//
// For the full CLI, use: go run ./cmd/tracehm
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tracehm - flat hybrid memory timing simulator")
	fmt.Println("")
	fmt.Println("Usage: tracehm [options] TRACEFILE [key=value ...]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config        Path to a base config file (.json or .yaml)")
	fmt.Println("  -metrics-addr  Serve Prometheus metrics on this address")
	fmt.Println("  -v             Verbose diagnostic logging")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tracehm' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tracehm' instead.")
	}
}
