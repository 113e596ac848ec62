// Package main provides the entry point for idlisim.
// idlisim runs idli programs on the functional emulator or the
// cycle-accurate core.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/benchmarks"
	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/loader"
	"github.com/sarchlab/idlisim/timing/core"
	"github.com/sarchlab/idlisim/timing/latency"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

var (
	timing     = flag.Bool("timing", false, "Enable timing simulation mode")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	yamlPath   = flag.String("yaml", "", "Path to a test descriptor with UART input and expected output")
	input      = flag.String("input", "", "Comma-separated words to send over the UART")
	verbose    = flag.Bool("v", false, "Verbose output")
	trace      = flag.Bool("trace", false, "Log every retired instruction and write")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: idlisim [options] <program.bin|program.s>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	switch {
	case *trace:
		log.SetLevel(logrus.TraceLevel)
	case *verbose:
		log.SetLevel(logrus.DebugLevel)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	desc := &loader.Descriptor{}
	if *yamlPath != "" {
		desc, err = loader.LoadDescriptor(*yamlPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading descriptor: %v\n", err)
			os.Exit(1)
		}
	}
	if *input != "" {
		words, err := parseWords(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
			os.Exit(1)
		}
		desc.Input = append(desc.Input, words...)
	}

	log.WithFields(logrus.Fields{
		"path":  programPath,
		"words": len(prog.Words),
		"entry": fmt.Sprintf("%04x", prog.Entry),
	}).Debug("loaded")

	var output []uint16
	if *timing {
		output, err = runTiming(prog, desc, log)
	} else {
		output, err = runEmulation(prog, desc, log)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(report(output, desc))
}

// runEmulation runs the program in functional emulation mode.
func runEmulation(prog *loader.Program, desc *loader.Descriptor, log *logrus.Logger) ([]uint16, error) {
	opts := []emu.EmulatorOption{
		emu.WithUARTInput(desc.Input...),
		emu.WithLogger(log),
	}
	if desc.Timeout > 0 {
		opts = append(opts, emu.WithMaxInstructions(desc.Timeout))
	}

	emulator := emu.NewEmulator(opts...)
	emulator.LoadProgram(prog.Entry, prog.Words)

	err := emulator.Run()

	fmt.Printf("Instructions executed: %d\n", emulator.InstructionCount())
	fmt.Printf("PC: 0x%04x\n", emulator.RegFile().PC)

	return emulator.UART().Output(), err
}

// runTiming runs the program in timing simulation mode.
func runTiming(prog *loader.Program, desc *loader.Descriptor, log *logrus.Logger) ([]uint16, error) {
	timingConfig := latency.DefaultTimingConfig()
	if *configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}
	if err := timingConfig.Validate(); err != nil {
		return nil, err
	}

	c := core.NewCore(
		pipeline.WithTimingConfig(timingConfig),
		pipeline.WithUARTInput(desc.Input...),
		pipeline.WithLogger(log),
		pipeline.WithFailOnInputExhausted(),
	)
	c.LoadProgram(prog.Entry, prog.Words)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		c.Pipeline.AcceptHook(core.NewTracer(log))
	}

	var err error
	if desc.Timeout > 0 {
		for c.Tick() {
			if c.Pipeline.Stats().Instructions >= desc.Timeout {
				err = benchmarks.ErrTimeout
				break
			}
		}
		if err == nil {
			err = c.Err()
		}
	} else {
		err = core.RunOnEngine(c, timingConfig.FrequencyMHz)
	}

	printStats(c.Pipeline.Stats(), timingConfig)

	return c.Output(), err
}

func printStats(stats pipeline.Statistics, config *latency.TimingConfig) {
	totalBeats := stats.Beats
	if totalBeats == 0 {
		totalBeats = 1
	}
	pct := func(n uint64) float64 {
		return 100.0 * float64(n) / float64(totalBeats)
	}

	fmt.Printf("\n")
	fmt.Printf("Total Instructions: %d (%d skipped)\n", stats.Instructions, stats.Skipped)
	fmt.Printf("Total Cycles: %d (%.1f us at %.0f MHz)\n",
		stats.Cycles, float64(stats.Cycles)/config.FrequencyMHz, config.FrequencyMHz)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("\n")
	fmt.Printf("Stall beats:\n")
	fmt.Printf("  Fetch:     %6d (%5.1f%%)\n", stats.FetchStalls, pct(stats.FetchStalls))
	fmt.Printf("  Immediate: %6d (%5.1f%%)\n", stats.ImmediateStalls, pct(stats.ImmediateStalls))
	fmt.Printf("  Memory:    %6d (%5.1f%%)\n", stats.MemStalls, pct(stats.MemStalls))
	fmt.Printf("  UART:      %6d (%5.1f%%)\n", stats.UARTStalls, pct(stats.UARTStalls))
	fmt.Printf("\n")
	fmt.Printf("Events:\n")
	fmt.Printf("  Redirects: %d\n", stats.Redirects)
	fmt.Printf("  Branches:  %d\n", stats.Branches)
	fmt.Printf("  Loads:     %d\n", stats.LoadWords)
	fmt.Printf("  Stores:    %d\n", stats.StoreWords)
	fmt.Printf("  UART TX:   %d\n", stats.Transmitted)
	fmt.Printf("  UART RX:   %d\n", stats.Received)
	fmt.Printf("  Bus bytes: %d read, %d written\n", stats.BusReads, stats.BusWrites)
}

// report prints the UART output and returns the process exit code.
func report(words []uint16, desc *loader.Descriptor) int {
	output, exit, ended := benchmarks.SplitOutput(words)

	fmt.Printf("\nUART output: %04x\n", output)
	if !ended {
		if desc.Output != nil {
			fmt.Fprintln(os.Stderr, benchmarks.ErrNoEndMarker)
			return 1
		}
		return 0
	}
	fmt.Printf("Exit code: %d\n", exit)

	if desc.Output != nil && !slices.Equal(output, desc.Output) {
		fmt.Fprintf(os.Stderr, "output %04x, expected %04x\n", output, desc.Output)
		return 1
	}
	return int(exit)
}

func parseWords(s string) ([]uint16, error) {
	var words []uint16
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 0, 16)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("bad word %q", field), err)
		}
		words = append(words, uint16(v))
	}
	return words, nil
}
