// Command benchmark runs the idlisim benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags] [program.s ...]
//
// Flags:
//
//	-csv       Output results in CSV format (default: human-readable)
//	-json      Output results in JSON format
//	-engine    Model to run on: timing, fast or emu (default: timing)
//	-config    Path to timing configuration JSON file
//	-core      Run only the core benchmark set
//	-v         Log each run
//
// Programs named on the command line run instead of the bundled set. A
// YAML descriptor with the same base name supplies their UART input and
// expected output.
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
//	# Compare the estimator with the cycle-level core
//	go run ./cmd/benchmark -engine fast
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/benchmarks"
	"github.com/sarchlab/idlisim/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	engineName := flag.String("engine", "timing", "Model to run on: timing, fast or emu")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	coreOnly := flag.Bool("core", false, "Run only the core benchmark set")
	verbose := flag.Bool("v", false, "Log each run")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.Verbose = *verbose

	switch *engineName {
	case "timing":
		config.Engine = benchmarks.EngineTiming
	case "fast":
		config.Engine = benchmarks.EngineFast
	case "emu":
		config.Engine = benchmarks.EngineEmu
	default:
		fmt.Fprintf(os.Stderr, "unknown engine %q\n", *engineName)
		os.Exit(2)
	}

	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}

	harness := benchmarks.NewHarness(config)
	switch {
	case flag.NArg() > 0:
		for _, path := range flag.Args() {
			bench, err := benchmarks.BenchmarkFromFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
				os.Exit(1)
			}
			harness.AddBenchmark(bench)
		}
	case *coreOnly:
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	default:
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("idlisim Benchmark Harness")
		fmt.Println("=========================")
		fmt.Printf("Engine: %s\n", config.Engine)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}
