// Package benchmarks runs idli test programs on the functional emulator and
// the cycle-level core and reports their results.
//
// A program signals completion by transmitting the end marker "@@END@@",
// one character per word, followed by its exit code. Words sent before the
// marker are the program's output.
package benchmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/asm"
	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/loader"
	"github.com/sarchlab/idlisim/timing/latency"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

// EndMarker precedes the exit code in a program's UART output.
const EndMarker = "@@END@@"

// DefaultTimeout bounds a run in instructions when a benchmark sets none.
const DefaultTimeout = 100000

var (
	// ErrNoEndMarker is reported when a program halts without signalling
	// completion.
	ErrNoEndMarker = errors.New("program ended without end marker")
	// ErrTimeout is reported when a program exceeds its instruction budget.
	ErrTimeout = errors.New("timed out")
)

// Engine selects the model a harness runs programs on.
type Engine int

const (
	// EngineTiming runs the cycle-level core.
	EngineTiming Engine = iota
	// EngineEmu runs the functional emulator.
	EngineEmu
	// EngineFast runs the emulator and charges table latencies.
	EngineFast
)

func (e Engine) String() string {
	switch e {
	case EngineTiming:
		return "timing"
	case EngineEmu:
		return "emu"
	case EngineFast:
		return "fast"
	}
	return fmt.Sprintf("Engine(%d)", int(e))
}

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Engine is the model the program ran on
	Engine string `json:"engine"`

	// SimulatedCycles is the total cycle count. It is zero on the emulator.
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired counts retired instructions, skipped ones included
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// Stall beats by cause
	FetchStalls     uint64 `json:"fetch_stalls"`
	ImmediateStalls uint64 `json:"immediate_stalls"`
	MemStalls       uint64 `json:"mem_stalls"`
	UARTStalls      uint64 `json:"uart_stalls"`

	// Redirects is the number of memory engine restarts
	Redirects uint64 `json:"redirects"`

	// Output is the UART output before the end marker
	Output []uint16 `json:"output"`

	// ExitCode is the word after the end marker
	ExitCode int64 `json:"exit_code"`

	// Passed is set when the program ended, exited with zero and produced
	// the expected output
	Passed bool `json:"passed"`

	// Error describes why the run failed, if it did
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the image, loaded at address zero
	Program []uint16

	// Input is sent to the program over the UART
	Input []uint16

	// ExpectedOutput is compared with the output before the end marker
	ExpectedOutput []uint16

	// Timeout bounds the run in instructions. Zero selects DefaultTimeout.
	Timeout uint64
}

// BenchmarkFromSource assembles src into a benchmark.
func BenchmarkFromSource(name, description, src string) Benchmark {
	words, err := asm.Assemble(src)
	if err != nil {
		panic(fmt.Sprintf("benchmark %s: %v", name, err))
	}
	return Benchmark{Name: name, Description: description, Program: words}
}

// BenchmarkFromFile loads a program and the YAML descriptor next to it,
// if there is one.
func BenchmarkFromFile(path string) (Benchmark, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return Benchmark{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	bench := Benchmark{Name: name, Description: path, Program: prog.Words}

	yamlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	if _, err := os.Stat(yamlPath); err == nil {
		d, err := loader.LoadDescriptor(yamlPath)
		if err != nil {
			return Benchmark{}, err
		}
		bench.Input = d.Input
		bench.ExpectedOutput = d.Output
		bench.Timeout = d.Timeout
	}

	return bench, nil
}

// Epilogue returns assembly that signals completion with the exit code in
// reg and then halts.
func Epilogue(reg string) string {
	var sb strings.Builder
	for _, c := range EndMarker {
		fmt.Fprintf(&sb, "    utx %d\n", c)
	}
	fmt.Fprintf(&sb, "    utx %s\n", reg)
	sb.WriteString("end_of_test: b end_of_test\n")
	return sb.String()
}

// SplitOutput separates a program's UART output from the end marker and
// exit code.
func SplitOutput(words []uint16) (output []uint16, exit int64, ok bool) {
	n := len(EndMarker)
	for i := 0; i+n < len(words); i++ {
		match := true
		for j, c := range EndMarker {
			if words[i+j] != uint16(c) {
				match = false
				break
			}
		}
		if match {
			return words[:i], int64(words[i+n]), true
		}
	}
	return words, 0, false
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Engine selects the model to run
	Engine Engine

	// Timing configures the cycle-level core. Nil selects the defaults.
	Timing *latency.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables debug logging of each run
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Engine: EngineTiming,
		Output: os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	timeout := bench.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
		Engine:      h.config.Engine.String(),
	}

	start := time.Now()
	var words []uint16
	var err error
	switch h.config.Engine {
	case EngineEmu:
		words, err = h.runEmu(bench, timeout, &result)
	case EngineFast:
		words, err = h.runFast(bench, timeout, &result)
	default:
		words, err = h.runTiming(bench, timeout, &result)
	}
	result.WallTime = time.Since(start)

	if result.InstructionsRetired > 0 {
		result.CPI = float64(result.SimulatedCycles) / float64(result.InstructionsRetired)
	}

	output, exit, ended := SplitOutput(words)
	result.Output = output
	result.ExitCode = exit

	switch {
	case err != nil:
		result.Error = err.Error()
	case !ended:
		result.Error = ErrNoEndMarker.Error()
	case exit != 0:
		result.Error = fmt.Sprintf("exited with non-zero code 0x%04x", exit)
	case bench.ExpectedOutput != nil && !slices.Equal(output, bench.ExpectedOutput):
		result.Error = fmt.Sprintf("output %04x, expected %04x", output, bench.ExpectedOutput)
	default:
		result.Passed = true
	}

	if h.config.Verbose {
		logrus.WithFields(logrus.Fields{
			"engine": result.Engine,
			"cycles": result.SimulatedCycles,
			"insts":  result.InstructionsRetired,
			"passed": result.Passed,
		}).Debug(bench.Name)
	}

	return result
}

func (h *Harness) runEmu(bench Benchmark, timeout uint64, result *BenchmarkResult) ([]uint16, error) {
	e := emu.NewEmulator(
		emu.WithMaxInstructions(timeout),
		emu.WithUARTInput(bench.Input...),
		emu.WithHaltOnSelfBranch(h.config.Timing.HaltOnSelfBranch),
	)
	e.LoadProgram(0, bench.Program)

	err := e.Run()
	result.InstructionsRetired = e.InstructionCount()
	if errors.Is(err, emu.ErrMaxInstructions) {
		err = ErrTimeout
	}
	return e.UART().Output(), err
}

func (h *Harness) runFast(bench Benchmark, timeout uint64, result *BenchmarkResult) ([]uint16, error) {
	e := emu.NewEmulator(
		emu.WithUARTInput(bench.Input...),
		emu.WithHaltOnSelfBranch(h.config.Timing.HaltOnSelfBranch),
	)
	e.LoadProgram(0, bench.Program)

	ft := pipeline.NewFastTiming(e, latency.NewTableWithConfig(h.config.Timing),
		pipeline.WithMaxInstructions(timeout))
	err := ft.Run()

	stats := ft.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	if errors.Is(err, emu.ErrMaxInstructions) {
		err = ErrTimeout
	}
	return e.UART().Output(), err
}

func (h *Harness) runTiming(bench Benchmark, timeout uint64, result *BenchmarkResult) ([]uint16, error) {
	p := pipeline.NewPipeline(
		pipeline.WithTimingConfig(h.config.Timing),
		pipeline.WithUARTInput(bench.Input...),
		pipeline.WithFailOnInputExhausted(),
	)
	p.LoadProgram(0, bench.Program)

	var err error
	for !p.Halted() {
		if p.Stats().Instructions >= timeout {
			err = ErrTimeout
			break
		}
		p.Tick()
	}
	if err == nil {
		err = p.Err()
	}

	stats := p.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.FetchStalls = stats.FetchStalls
	result.ImmediateStalls = stats.ImmediateStalls
	result.MemStalls = stats.MemStalls
	result.UARTStalls = stats.UARTStalls
	result.Redirects = stats.Redirects
	return p.Output(), err
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== idlisim Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL: " + r.Error
		}

		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s [%s]\n", r.Name, r.Engine)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Status: %s\n", status)
		_, _ = fmt.Fprintf(h.config.Output, "  Exit Code: %d\n", r.ExitCode)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		if r.SimulatedCycles > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
			_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
			_, _ = fmt.Fprintf(h.config.Output, "  Fetch Stalls:         %d\n", r.FetchStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Immediate Stalls:     %d\n", r.ImmediateStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Mem Stalls:           %d\n", r.MemStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  UART Stalls:          %d\n", r.UARTStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Redirects:            %d\n", r.Redirects)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,engine,cycles,instructions,cpi,fetch_stalls,immediate_stalls,mem_stalls,uart_stalls,redirects,exit_code,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.Engine,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.FetchStalls,
			r.ImmediateStalls,
			r.MemStalls,
			r.UARTStalls,
			r.Redirects,
			r.ExitCode,
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Engine is the model the benchmarks ran on
	Engine string `json:"engine"`

	// Config is the timing configuration used
	Config *latency.TimingConfig `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// PassingBenchmarks is the number of benchmarks that passed
	PassingBenchmarks int `json:"passing_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	passing := 0
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
		if r.Passed {
			passing++
		}
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Engine:    h.config.Engine.String(),
			Config:    h.config.Timing,
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			PassingBenchmarks: passing,
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
