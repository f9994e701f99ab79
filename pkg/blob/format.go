// Package blob implements the binary container for tensor snapshots:
// checkpointed parameters and recorded field frames.
//
// A blob file holds named, shaped entries of float32 or float64 data.
// All sections are 64-byte aligned so files can be memory-mapped:
//
//	[file header (64B)]
//	[entry metadata 0 (64B)] [name 0 (aligned)] [values 0 (aligned)]
//	[entry metadata 1 (64B)] [name 1 (aligned)] [values 1 (aligned)]
//	...
//
// All integers and values are little-endian.
package blob

import "github.com/pkg/errors"

const (
	// Alignment is the byte alignment for all sections in a blob file.
	Alignment = 64

	// Magic marks the first 4 bytes of every blob file ("PLB1").
	Magic uint32 = 0x31424C50

	// Version is the current file format version.
	Version uint32 = 1

	// Sentinel validates each entry's metadata block.
	Sentinel uint32 = 0xC0FFEE01

	// MaxRank is the largest tensor rank an entry can carry.
	MaxRank = 4
)

// DType is the on-disk element type of an entry.
type DType uint32

const (
	Float32 DType = 1
	Float64 DType = 2
)

// ParseDType reads a dtype name, as used in configs and flags.
func ParseDType(s string) (DType, error) {
	switch s {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	default:
		return 0, errors.Errorf(`unknown dtype %q (want "float32" or "float64")`, s)
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ElemSize is the byte size of one element.
func (d DType) ElemSize() int {
	switch d {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// fileHeader is the 64-byte block at the start of every file.
type fileHeader struct {
	Magic    uint32
	Version  uint32
	Count    uint32
	Reserved [52]byte
}

// entryMeta is the 64-byte block preceding each entry's name and data.
type entryMeta struct {
	Sentinel    uint32
	DType       uint32
	Rank        uint32
	NameLen     uint32
	SizeInBytes uint64 // value bytes only
	Offset      uint64 // absolute offset of the value bytes
	Dims        [MaxRank]uint64
}

// alignTo returns the smallest multiple of Alignment >= offset.
func alignTo(offset uint64) uint64 {
	remainder := offset % Alignment
	if remainder == 0 {
		return offset
	}
	return offset + (Alignment - remainder)
}

func dimsLen(dims []int) (int, error) {
	n := 1
	for _, d := range dims {
		if d <= 0 {
			return 0, errors.Errorf("dimension %d is not positive in shape %v", d, dims)
		}
		n *= d
	}
	return n, nil
}
