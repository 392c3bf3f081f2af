// Package main provides the entry point for cachesim.
// cachesim simulates an inclusive L1/L2/L3 cache hierarchy shared by the
// cores of a processor.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("cachesim - inclusive multi-level cache simulator")
	fmt.Println("Caches built on Akita mem/cache blocks and sets")
	fmt.Println("")
	fmt.Println("Usage: cachesim <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run TRACE       Run a trace and print the report")
	fmt.Println("  describe        Print the address split of every cache level")
	fmt.Println("  config dump     Write a trace header as a JSON system config")
	fmt.Println("  config default  Write the default system config")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cachesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cachesim' instead.")
	}
}
