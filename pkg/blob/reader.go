package blob

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Entry describes one tensor in an open blob file.
type Entry struct {
	Name  string
	Dims  []int
	DType DType

	offset uint64
	size   uint64
}

// Len is the element count of the entry.
func (e Entry) Len() int {
	n := 1
	for _, d := range e.Dims {
		n *= d
	}
	return n
}

// Reader reads a blob file written by Writer.
type Reader struct {
	file    *os.File
	entries []Entry
	byName  map[string]int
}

// Open reads the header and all entry metadata of the file at path.
// Values are not loaded until Read.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open blob file")
	}

	r := &Reader{file: f, byName: map[string]int{}}
	if err := r.scan(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) scan() error {
	var header fileHeader
	if err := r.readStructAt(0, &header); err != nil {
		return errors.Wrap(err, "read header")
	}
	if header.Magic != Magic {
		return errors.Errorf("not a blob file (magic %#x)", header.Magic)
	}
	if header.Version != Version {
		return errors.Errorf("unsupported blob version %d", header.Version)
	}

	offset := uint64(Alignment)
	for i := uint32(0); i < header.Count; i += 1 {
		var meta entryMeta
		if err := r.readStructAt(int64(offset), &meta); err != nil {
			return errors.Wrapf(err, "read metadata of entry %d", i)
		}
		if meta.Sentinel != Sentinel {
			return errors.Errorf("entry %d: corrupt metadata (sentinel %#x)", i, meta.Sentinel)
		}
		dtype := DType(meta.DType)
		if dtype.ElemSize() == 0 {
			return errors.Errorf("entry %d: unknown dtype %d", i, meta.DType)
		}
		if MaxRank < meta.Rank {
			return errors.Errorf("entry %d: rank %d exceeds %d", i, meta.Rank, MaxRank)
		}

		name := make([]byte, meta.NameLen)
		if _, err := r.file.ReadAt(name, int64(offset)+Alignment); err != nil {
			return errors.Wrapf(err, "read name of entry %d", i)
		}

		dims := make([]int, meta.Rank)
		for d := range dims {
			dims[d] = int(meta.Dims[d])
		}

		entry := Entry{
			Name:   string(name),
			Dims:   dims,
			DType:  dtype,
			offset: meta.Offset,
			size:   meta.SizeInBytes,
		}
		if want := entry.Len() * dtype.ElemSize(); uint64(want) != meta.SizeInBytes {
			return errors.Errorf(
				"entry %q: shape %v wants %d bytes, metadata says %d",
				entry.Name, dims, want, meta.SizeInBytes,
			)
		}

		r.byName[entry.Name] = len(r.entries)
		r.entries = append(r.entries, entry)

		offset = alignTo(meta.Offset + meta.SizeInBytes)
	}
	return nil
}

// Entries lists all entries in file order.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Read loads the named entry, decoding values to float64 regardless of
// the stored precision.
func (r *Reader) Read(name string) (dims []int, values []float64, err error) {
	i, ok := r.byName[name]
	if !ok {
		return nil, nil, errors.Errorf("no blob entry %q", name)
	}
	entry := r.entries[i]

	data := make([]byte, entry.size)
	if _, err := r.file.ReadAt(data, int64(entry.offset)); err != nil {
		return nil, nil, errors.Wrapf(err, "read data of %q", name)
	}

	values = make([]float64, entry.Len())
	switch entry.DType {
	case Float32:
		for i := range values {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
	case Float64:
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	}
	return entry.Dims, values, nil
}

func (r *Reader) Close() error {
	return r.file.Close()
}

func (r *Reader) readStructAt(offset int64, v any) error {
	buf := make([]byte, binary.Size(v))
	if _, err := r.file.ReadAt(buf, offset); err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, v)
}
