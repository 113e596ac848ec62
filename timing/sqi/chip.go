// Package sqi models the two SPI/SQI memory chips that back idli's 64K-word
// address space and the engine that streams words to and from them one
// nibble per chip per SCK period.
//
// The even chip holds the low byte of every word and the odd chip the high
// byte. Both chips see the same command and address nibbles.
package sqi

import (
	"github.com/sarchlab/akita/v4/mem/mem"
)

// Size is the number of bytes in one chip.
const Size = 1 << 16

// Command modes sent as the first byte of a transaction.
const (
	CmdRead  uint8 = 0x03
	CmdWrite uint8 = 0x02
)

type chipState uint8

const (
	chipMode chipState = iota
	chipModeLow
	chipAddr
	chipDummy
	chipRead
	chipWrite
	chipIgnore
)

// Chip is a behavioural model of one quad-I/O serial RAM. Each call to
// Clock is one SCK rising edge with four data lines in each direction.
type Chip struct {
	storage *mem.Storage

	state  chipState
	mode   uint8
	addr   uint16
	count  int
	hi     bool
	latch  uint8
	reads  uint64
	writes uint64
}

// NewChip creates a chip with all bytes zero.
func NewChip() *Chip {
	return &Chip{storage: mem.NewStorage(Size)}
}

// Deselect raises chip select. The next clock starts a new transaction.
func (c *Chip) Deselect() {
	c.state = chipMode
	c.count = 0
	c.hi = true
}

// Clock drives sio on the data lines and returns what the chip drives
// back. Only the read data state drives a meaningful value.
func (c *Chip) Clock(sio uint8) uint8 {
	sio &= 0xF

	switch c.state {
	case chipMode:
		c.mode = sio << 4
		c.state = chipModeLow
	case chipModeLow:
		c.mode |= sio
		c.addr = 0
		c.count = 0
		c.state = chipAddr
		if c.mode != CmdRead && c.mode != CmdWrite {
			c.state = chipIgnore
		}
	case chipAddr:
		c.addr = c.addr<<4 | uint16(sio)
		c.count++
		if c.count < 4 {
			break
		}
		c.count = 0
		c.hi = true
		c.state = chipWrite
		if c.mode == CmdRead {
			c.state = chipDummy
		}
	case chipDummy:
		c.count++
		if c.count == 2 {
			c.state = chipRead
		}
	case chipRead:
		b := c.ByteAt(c.addr)
		if c.hi {
			c.hi = false
			return b >> 4
		}
		c.hi = true
		c.addr++
		c.reads++
		return b & 0xF
	case chipWrite:
		if c.hi {
			c.latch = sio << 4
			c.hi = false
			break
		}
		c.SetByte(c.addr, c.latch|sio)
		c.hi = true
		c.addr++
		c.writes++
	}

	return 0
}

// ByteAt returns the byte at addr without clocking the chip.
func (c *Chip) ByteAt(addr uint16) byte {
	data, err := c.storage.Read(uint64(addr), 1)
	if err != nil {
		panic(err)
	}
	return data[0]
}

// SetByte sets the byte at addr without clocking the chip.
func (c *Chip) SetByte(addr uint16, b byte) {
	if err := c.storage.Write(uint64(addr), []byte{b}); err != nil {
		panic(err)
	}
}

// Load copies data into the chip starting at address 0.
func (c *Chip) Load(data []byte) error {
	if len(data) > Size {
		data = data[:Size]
	}
	return c.storage.Write(0, data)
}

// Bytes returns a copy of the whole chip.
func (c *Chip) Bytes() []byte {
	data, err := c.storage.Read(0, Size)
	if err != nil {
		panic(err)
	}
	return data
}

// Transfers returns the number of bytes read and written over the bus.
func (c *Chip) Transfers() (reads, writes uint64) {
	return c.reads, c.writes
}
