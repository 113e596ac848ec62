// Command idli-asm assembles idli source into a program image.
//
// Usage:
//
//	idli-asm [flags] program.s
//
// The image is written as little-endian words. With -hex, the even and
// odd chip images are also written as one hex byte per line, the format
// the hardware testbench reads. With -flash, the payload for the flash
// programmer is written as well.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/asm"
	"github.com/sarchlab/idlisim/loader"
)

type defines map[string]int64

func (d defines) String() string {
	return fmt.Sprint(map[string]int64(d))
}

func (d defines) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		value = "1"
	}
	v, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return err
	}
	d[name] = v
	return nil
}

func main() {
	output := flag.String("o", "", "Output image (default: source name with .bin)")
	hexPrefix := flag.String("hex", "", "Write <prefix>_even.hex and <prefix>_odd.hex chip images")
	flash := flag.String("flash", "", "Write the flash programmer payload to this file")
	verbose := flag.Bool("v", false, "Log each statement")
	defs := defines{}
	flag.Var(defs, "D", "Define NAME=VALUE before assembling (repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: idli-asm [options] <program.s>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	src := flag.Arg(0)
	if *output == "" {
		*output = strings.TrimSuffix(src, filepath.Ext(src)) + ".bin"
	}

	if err := run(src, *output, *hexPrefix, *flash, defs, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
		os.Exit(1)
	}
}

func run(src, output, hexPrefix, flash string, defs defines, verbose bool) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	a := &asm.Assembler{Verbose: verbose}
	for name, v := range defs {
		a.Predefine(name, v)
	}
	prog, err := a.Parse(f)
	if err != nil {
		return err
	}

	var image bytes.Buffer
	if err := loader.WriteImage(&image, prog.Words); err != nil {
		return err
	}
	if err := os.WriteFile(output, image.Bytes(), 0o644); err != nil {
		return err
	}

	if hexPrefix != "" {
		even, odd := loader.Split(prog.Words)
		if err := writeHex(hexPrefix+"_even.hex", even); err != nil {
			return err
		}
		if err := writeHex(hexPrefix+"_odd.hex", odd); err != nil {
			return err
		}
	}

	if flash != "" {
		if err := os.WriteFile(flash, loader.EncodeFlash(prog.Words), 0o644); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"words":  len(prog.Words),
		"labels": len(prog.Labels),
	}).Debug(output)

	return nil
}

func writeHex(path string, data []byte) error {
	var buf bytes.Buffer
	if err := loader.WriteHex(&buf, data); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
