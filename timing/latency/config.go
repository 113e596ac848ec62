package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the run-time parameters of the cycle-level core.
type TimingConfig struct {
	// FrequencyMHz is the core clock. It only scales reported time and the
	// akita ticking frequency. Default: 12 MHz.
	FrequencyMHz float64 `json:"frequency_mhz"`

	// MaxCycles stops the simulation after this many cycles.
	// Default: 0 (no limit).
	MaxCycles uint64 `json:"max_cycles"`

	// StallTimeoutCycles aborts the simulation when no instruction retires
	// for this many cycles. Default: 1<<20. Zero disables the watchdog.
	StallTimeoutCycles uint64 `json:"stall_timeout_cycles"`

	// HaltOnSelfBranch stops the core when b or j targets its own address.
	// Default: true.
	HaltOnSelfBranch bool `json:"halt_on_self_branch"`

	// RXQueueDepth is the number of received UART words the core buffers.
	// Default: 2.
	RXQueueDepth int `json:"rx_queue_depth"`

	// UARTFlowControl makes the host wait for queue space before sending
	// a word. Without it, words arriving at a full queue are dropped.
	// Default: true.
	UARTFlowControl bool `json:"uart_flow_control"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		FrequencyMHz:       12,
		MaxCycles:          0,
		StallTimeoutCycles: 1 << 20,
		HaltOnSelfBranch:   true,
		RXQueueDepth:       2,
		UARTFlowControl:    true,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can drive a core.
func (c *TimingConfig) Validate() error {
	if c.FrequencyMHz <= 0 {
		return fmt.Errorf("frequency_mhz must be > 0")
	}
	if c.RXQueueDepth < 1 {
		return fmt.Errorf("rx_queue_depth must be >= 1")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
