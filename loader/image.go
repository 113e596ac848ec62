// Package loader reads and writes idli program images.
//
// An image is a flat sequence of little-endian 16-bit words loaded at
// address zero. The two serial memories hold the low and high bytes of each
// word, so an image can also be stored as a pair of byte images or packed
// into the payload the flash programmer expects.
package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/idlisim/asm"
	"github.com/sarchlab/idlisim/emu"
)

var (
	// ErrImageOdd is returned for an image with a trailing half word.
	ErrImageOdd = errors.New("image has an odd number of bytes")
	// ErrImageSize is returned for an image larger than memory.
	ErrImageSize = errors.New("image exceeds memory")
)

// Program is an image ready to be loaded into memory.
type Program struct {
	// Entry is the address where execution begins.
	Entry uint16
	// Words is the image, loaded at address zero.
	Words []uint16
	// Labels holds assembler labels when the program was built from
	// source.
	Labels map[string]uint16
}

// ReadImage decodes a flat image.
func ReadImage(r io.Reader) ([]uint16, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data)%2 != 0 {
		return nil, ErrImageOdd
	}
	if len(data)/2 > emu.MemorySize {
		return nil, ErrImageSize
	}

	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return words, nil
}

// WriteImage encodes words as a flat image.
func WriteImage(w io.Writer, words []uint16) error {
	buf := make([]byte, 2*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint16(buf[2*i:], word)
	}
	_, err := w.Write(buf)
	return err
}

// LoadImage reads a flat image file.
func LoadImage(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	words, err := ReadImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Program{Words: words}, nil
}

// Load reads a program from path. Files ending in .s or .asm are
// assembled; anything else is a flat image.
func Load(path string) (*Program, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".s", ".asm":
	default:
		return LoadImage(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := (&asm.Assembler{}).Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Program{Words: prog.Words, Labels: prog.Labels}, nil
}
