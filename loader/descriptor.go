package loader

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Descriptor is the YAML file that accompanies a test program.
type Descriptor struct {
	// Input lists the words the host sends over the UART.
	Input []uint16 `yaml:"input,omitempty"`
	// Output lists the words the program must transmit before the end
	// marker.
	Output []uint16 `yaml:"output,omitempty"`
	// Timeout bounds the run in instructions. Zero selects the harness
	// default.
	Timeout uint64 `yaml:"timeout,omitempty"`
}

// ParseDescriptor decodes a descriptor. An empty document is an empty
// descriptor.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	d := &Descriptor{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	return d, nil
}

// LoadDescriptor reads a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return ParseDescriptor(data)
}

// Marshal encodes the descriptor as YAML.
func (d *Descriptor) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
