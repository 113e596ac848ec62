package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrSplitMismatch is returned when two chip images differ in length.
	ErrSplitMismatch = errors.New("chip images differ in length")
	// ErrFlashPayload is returned for a malformed flash payload.
	ErrFlashPayload = errors.New("malformed flash payload")
)

// Split separates words into the byte images of the even (low byte) and
// odd (high byte) memories.
func Split(words []uint16) (even, odd []byte) {
	even = make([]byte, len(words))
	odd = make([]byte, len(words))
	for i, w := range words {
		even[i] = byte(w)
		odd[i] = byte(w >> 8)
	}
	return even, odd
}

// Join is the inverse of Split.
func Join(even, odd []byte) ([]uint16, error) {
	if len(even) != len(odd) {
		return nil, ErrSplitMismatch
	}
	words := make([]uint16, len(even))
	for i := range words {
		words[i] = uint16(even[i]) | uint16(odd[i])<<8
	}
	return words, nil
}

// WriteHex writes one byte per line as two hex digits, the format memory
// models in HDL testbenches load.
func WriteHex(w io.Writer, data []byte) error {
	lines := make([]string, len(data))
	for i, b := range data {
		lines[i] = fmt.Sprintf("%02x", b)
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// ReadHex parses the output of WriteHex. Blank lines are ignored.
func ReadHex(r io.Reader) ([]byte, error) {
	var data []byte
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseUint(text, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("hex line %d: %w", lineno, err)
		}
		data = append(data, byte(v))
	}
	return data, scanner.Err()
}

// EncodeFlash packs words into the flash programmer payload: a
// little-endian word count, the even bytes, then the odd bytes.
func EncodeFlash(words []uint16) []byte {
	even, odd := Split(words)
	buf := make([]byte, 2, 2+2*len(words))
	binary.LittleEndian.PutUint16(buf, uint16(len(words)))
	buf = append(buf, even...)
	return append(buf, odd...)
}

// DecodeFlash is the inverse of EncodeFlash.
func DecodeFlash(payload []byte) ([]uint16, error) {
	if len(payload) < 2 {
		return nil, fmt.Errorf("%w: missing count", ErrFlashPayload)
	}
	n := int(binary.LittleEndian.Uint16(payload))
	if len(payload) != 2+2*n {
		return nil, fmt.Errorf("%w: %d words need %d bytes, have %d",
			ErrFlashPayload, n, 2+2*n, len(payload))
	}
	return Join(payload[2:2+n], payload[2+n:])
}
