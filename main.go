// Package main provides the entry point for idlisim.
// idlisim is a cycle-accurate simulator of the idli bit-serial core built
// on Akita.
//
// For the full CLI, use: go run ./cmd/idlisim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("idlisim - idli bit-serial core simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: idlisim [options] <program.bin|program.s>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Run on the cycle-accurate core")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -yaml      Path to a test descriptor")
	fmt.Println("  -input     Comma-separated UART input words")
	fmt.Println("  -v         Verbose output")
	fmt.Println("  -trace     Log every retired instruction")
	fmt.Println("")
	fmt.Println("Tools:")
	fmt.Println("  go run ./cmd/idli-asm       assemble a program")
	fmt.Println("  go run ./cmd/idli-objdump   disassemble an image")
	fmt.Println("  go run ./cmd/benchmark      run the benchmark programs")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/idlisim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/idlisim' instead.")
	}
}
