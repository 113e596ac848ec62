// Command idli-objdump disassembles an idli program image.
//
// Usage:
//
//	idli-objdump [-base ADDR] program.bin
//
// Assembly sources are assembled first, so their labels are printed
// above the instructions they mark.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/loader"
)

func main() {
	base := flag.Uint("base", 0, "Address of the first word")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: idli-objdump [options] <program.bin|program.s>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	prog, err := loader.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	dump(os.Stdout, prog, uint16(*base))
}

func dump(w io.Writer, prog *loader.Program, base uint16) {
	labels := map[uint16][]string{}
	for name, addr := range prog.Labels {
		labels[addr] = append(labels[addr], name)
	}

	for _, line := range insts.Disassemble(prog.Words, base) {
		names := labels[line.Addr]
		sort.Strings(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(w, "%s:\n", name)
		}
		_, _ = fmt.Fprintln(w, line.String())
	}
}
