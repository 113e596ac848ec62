package benchmarks

import "strings"

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// exercises a specific part of the core and checks its UART output.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		uartEcho(),
		conditionalExecution(),
		carryChain(),
		predicateChain(),
		shifts(),
		loopSimulation(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop,
// memory traffic and calls.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSimulation(),
		memorySequential(),
		functionCalls(),
	}
}

// program joins source lines and appends the epilogue that exits with
// zero.
func program(lines ...string) string {
	return strings.Join(lines, "\n") + "\n" + Epilogue("zr")
}

func arithmeticSequential() Benchmark {
	var lines []string
	for i := 0; i < 4; i++ {
		lines = append(lines,
			"inc r1, r1", "inc r2, r2", "inc r3, r3", "inc r4, r4", "inc r5, r5")
	}
	lines = append(lines, "add r6, r1, r5", "utx r6")

	b := BenchmarkFromSource("arithmetic_sequential",
		"20 independent increments - measures ALU beat throughput",
		program(lines...))
	b.ExpectedOutput = []uint16{8}
	return b
}

func dependencyChain() Benchmark {
	lines := make([]string, 0, 21)
	for i := 0; i < 20; i++ {
		lines = append(lines, "inc r1, r1")
	}
	lines = append(lines, "utx r1")

	b := BenchmarkFromSource("dependency_chain",
		"20 dependent increments - bit-serial results are ready next beat",
		program(lines...))
	b.ExpectedOutput = []uint16{20}
	return b
}

func memorySequential() Benchmark {
	b := BenchmarkFromSource("memory_sequential",
		"range store and load plus base-update forms - measures memory redirects",
		program(
			".equ BUF, 0x400",
			"    add r1, zr, 1",
			"    add r2, zr, 2",
			"    add r3, zr, 3",
			"    add r4, zr, 4",
			"    add r9, zr, BUF",
			"    stm r1, r4, r9",
			"    ldm r8, r5, r9",
			"    utx r5",
			"    utx r8",
			"    st+ r2, r9",
			"    -ld r10, r9",
			"    utx r10",
			"    utx r9",
			"    ld r11, r9, 3",
			"    utx r11",
		))
	b.ExpectedOutput = []uint16{4, 1, 2, 0x400, 4}
	return b
}

func functionCalls() Benchmark {
	b := BenchmarkFromSource("function_calls",
		"three calls to a leaf function - measures link and return redirects",
		strings.Join([]string{
			"    add r1, zr, 0",
			"    bl incr",
			"    bl incr",
			"    bl incr",
			"    utx r1",
			Epilogue("zr"),
			"incr:",
			"    inc r1, r1",
			"    jr zr",
		}, "\n"))
	b.ExpectedOutput = []uint16{3}
	return b
}

func branchTaken() Benchmark {
	b := BenchmarkFromSource("branch_taken",
		"ten-iteration counted loop - measures taken branch cost",
		program(
			"    add r1, zr, 10",
			"    add r2, zr, 0",
			"loop:",
			"    inc r2, r2",
			"    dec r1, r1",
			"    nex r1, zr",
			"    b loop",
			"    utx r2",
		))
	b.ExpectedOutput = []uint16{10}
	return b
}

func uartEcho() Benchmark {
	var lines []string
	for i := 0; i < 3; i++ {
		lines = append(lines, "urx r1", "inc r1, r1", "utx r1")
	}

	b := BenchmarkFromSource("uart_echo",
		"receive, increment and transmit three words - measures UART stalls",
		program(lines...))
	b.Input = []uint16{1, 2, 0xFFFF}
	b.ExpectedOutput = []uint16{2, 3, 0}
	return b
}

func conditionalExecution() Benchmark {
	b := BenchmarkFromSource("conditional_execution",
		"cex window with mixed polarity - measures skipped beats",
		program(
			"    add r1, zr, 5",
			"    eq r1, 5",
			"    cex tft",
			"    add r2, zr, 1",
			"    add r3, zr, 1",
			"    add r4, zr, 1",
			"    utx r2",
			"    utx r3",
			"    utx r4",
		))
	b.ExpectedOutput = []uint16{1, 0, 1}
	return b
}

func carryChain() Benchmark {
	b := BenchmarkFromSource("carry_chain",
		"32-bit add through a carry chain",
		program(
			"    add r1, zr, 0xFFFF",
			"    add r2, zr, 1",
			"    add r3, zr, 1",
			"    add r4, zr, 0",
			"    add r1, r1, r3",
			"    carry 1",
			"    add r2, r2, r4",
			"    utx r1",
			"    utx r2",
		))
	b.ExpectedOutput = []uint16{0, 2}
	return b
}

func predicateChain() Benchmark {
	b := BenchmarkFromSource("predicate_chain",
		"andp and orp combine successive compares",
		program(
			"    eq zr, zr",
			"    andp 1",
			"    ne zr, zr",
			"    getp r1",
			"    ne zr, zr",
			"    orp 1",
			"    eq zr, zr",
			"    getp r2",
			"    utx r1",
			"    utx r2",
		))
	b.ExpectedOutput = []uint16{0, 1}
	return b
}

func shifts() Benchmark {
	b := BenchmarkFromSource("shifts",
		"single-bit shifts and rotates across slice boundaries",
		program(
			"    add r1, zr, 0x8001",
			"    srl r2, r1",
			"    sra r3, r1",
			"    ror r4, r1",
			"    rol r5, r1",
			"    utx r2",
			"    utx r3",
			"    utx r4",
			"    utx r5",
		))
	b.ExpectedOutput = []uint16{0x4000, 0xC000, 0xC000, 0x0003}
	return b
}

func loopSimulation() Benchmark {
	b := BenchmarkFromSource("loop_simulation",
		"sum of 1..10 in a counted loop",
		program(
			"    add r1, zr, 10",
			"    add r2, zr, 0",
			"loop:",
			"    add r2, r2, r1",
			"    dec r1, r1",
			"    nex r1, zr",
			"    b loop",
			"    utx r2",
		))
	b.ExpectedOutput = []uint16{55}
	return b
}
