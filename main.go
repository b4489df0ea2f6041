// Package main prints how to run x86sim.
//
// For the emulator itself, use: go run ./cmd/x86sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("x86sim - 8086/V20 PC emulator")
	fmt.Println("")
	fmt.Println("Usage: x86sim [run] --bios <bios.bin> --font <asciivga.dat> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run        Boot a machine (default)")
	fmt.Println("  console    Debug a machine from a Lua console")
	fmt.Println("  config     Write a machine configuration file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/x86sim --help' for all options.")
	fmt.Println("Run 'go run ./cmd/x86prof <config.json>' to profile the emulator.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/x86sim' instead.")
	}
}
