// Package main provides the entry point for rvfront.
// rvfront is a cycle-accurate RISC-V pipeline front-end simulator.
//
// For the full CLI, use: go run ./cmd/rvfront
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvfront - RISC-V front-end simulator")
	fmt.Println("")
	fmt.Println("Usage: rvfront <command> [options] <program>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run       Run a program for a fixed number of cycles")
	fmt.Println("  script    Drive the front end from a Lua script")
	fmt.Println("  step      Step one clock edge at a time in a terminal viewer")
	fmt.Println("  bench     Run the built-in front-end workloads")
	fmt.Println("  profile   Measure simulation speed")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvfront --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvfront' instead.")
	}
}
