// Package main provides a profiling wrapper for idlisim to identify
// simulator performance bottlenecks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/loader"
	"github.com/sarchlab/idlisim/timing/latency"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

var (
	timing      = flag.Bool("timing", false, "Enable timing simulation mode")
	fastTiming  = flag.Bool("fast-timing", false, "Enable fast timing simulation mode")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.bin|program.s>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s (%d words)\n", programPath, len(prog.Words))

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()

	var instrCount uint64
	switch {
	case *fastTiming:
		instrCount, err = runFastTimingProfile(ctx, prog)
	case *timing:
		instrCount, err = runTimingProfile(ctx, prog)
	default:
		instrCount, err = runEmulationProfile(ctx, prog)
	}

	elapsed := time.Since(start)

	if *memProfile != "" {
		f, ferr := os.Create(*memProfile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", ferr)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Printf("Stopped after %v\n", *duration)
	case err != nil:
		fmt.Printf("Stopped: %v\n", err)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// checkEvery is how many steps run between deadline checks.
const checkEvery = 4096

// runEmulationProfile runs the program in functional emulation mode.
func runEmulationProfile(ctx context.Context, prog *loader.Program) (uint64, error) {
	var opts []emu.EmulatorOption
	if *instruction > 0 {
		opts = append(opts, emu.WithMaxInstructions(*instruction))
	}

	emulator := emu.NewEmulator(opts...)
	emulator.LoadProgram(prog.Entry, prog.Words)

	for i := 0; ; i++ {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return emulator.InstructionCount(), ctx.Err()
		}
		result := emulator.Step()
		switch {
		case result.Err != nil:
			return emulator.InstructionCount(), result.Err
		case result.Halted:
			return emulator.InstructionCount(), nil
		case result.Stalled:
			return emulator.InstructionCount(), emu.ErrInputExhausted
		}
	}
}

// runTimingProfile runs the program on the cycle-level core.
func runTimingProfile(ctx context.Context, prog *loader.Program) (uint64, error) {
	pipe := pipeline.NewPipeline(pipeline.WithTimingConfig(latency.DefaultTimingConfig()))
	pipe.LoadProgram(prog.Entry, prog.Words)

	for i := 0; !pipe.Halted(); i++ {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return pipe.Stats().Instructions, ctx.Err()
		}
		if *instruction > 0 && pipe.Stats().Instructions >= *instruction {
			return pipe.Stats().Instructions, emu.ErrMaxInstructions
		}
		pipe.Tick()
	}

	return pipe.Stats().Instructions, pipe.Err()
}

// runFastTimingProfile runs the program on the latency-table estimator.
func runFastTimingProfile(ctx context.Context, prog *loader.Program) (uint64, error) {
	emulator := emu.NewEmulator()
	emulator.LoadProgram(prog.Entry, prog.Words)

	var opts []pipeline.FastTimingOption
	if *instruction > 0 {
		opts = append(opts, pipeline.WithMaxInstructions(*instruction))
	}
	ft := pipeline.NewFastTiming(emulator,
		latency.NewTableWithConfig(latency.DefaultTimingConfig()), opts...)

	for i := 0; !ft.Halted(); i++ {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return ft.Stats().Instructions, ctx.Err()
		}
		if err := ft.Tick(); err != nil {
			return ft.Stats().Instructions, err
		}
	}

	return ft.Stats().Instructions, nil
}
