package blob

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Writer builds a blob file entry by entry. Nothing is written until
// Close, which lays out the header and all sections.
type Writer struct {
	file    *os.File
	offset  uint64
	entries []pendingEntry
	names   map[string]bool
}

type pendingEntry struct {
	metaOffset uint64
	dataOffset uint64
	name       string
	dims       []int
	dtype      DType
	data       []byte
}

// NewWriter creates a blob file at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create blob file")
	}
	return &Writer{
		file:   f,
		offset: Alignment, // header comes first
		names:  map[string]bool{},
	}, nil
}

// Add appends a named tensor. values are encoded at dtype precision;
// len(values) must equal the product of dims (dims may be empty for a
// scalar). Names must be unique within a file.
func (w *Writer) Add(name string, dims []int, dtype DType, values []float64) error {
	if name == "" {
		return errors.New("blob entry needs a name")
	}
	if w.names[name] {
		return errors.Errorf("duplicate blob entry %q", name)
	}
	if MaxRank < len(dims) {
		return errors.Errorf("entry %q has rank %d, the format caps at %d", name, len(dims), MaxRank)
	}
	n, err := dimsLen(dims)
	if err != nil {
		return errors.Wrapf(err, "entry %q", name)
	}
	if n != len(values) {
		return errors.Errorf(
			"entry %q: shape %v wants %d values, got %d", name, dims, n, len(values),
		)
	}
	if dtype.ElemSize() == 0 {
		return errors.Errorf("entry %q: unknown dtype %d", name, dtype)
	}

	data := encode(dtype, values)

	metaOffset := w.offset
	dataOffset := alignTo(metaOffset + Alignment + uint64(len(name)))

	w.entries = append(w.entries, pendingEntry{
		metaOffset: metaOffset,
		dataOffset: dataOffset,
		name:       name,
		dims:       dims,
		dtype:      dtype,
		data:       data,
	})
	w.names[name] = true
	w.offset = alignTo(dataOffset + uint64(len(data)))
	return nil
}

// Close writes the header and every entry, then closes the file.
func (w *Writer) Close() error {
	header := fileHeader{
		Magic:   Magic,
		Version: Version,
		Count:   uint32(len(w.entries)),
	}
	if err := w.writeStructAt(0, &header); err != nil {
		w.file.Close()
		return errors.Wrap(err, "write header")
	}

	for _, entry := range w.entries {
		meta := entryMeta{
			Sentinel:    Sentinel,
			DType:       uint32(entry.dtype),
			Rank:        uint32(len(entry.dims)),
			NameLen:     uint32(len(entry.name)),
			SizeInBytes: uint64(len(entry.data)),
			Offset:      entry.dataOffset,
		}
		for i, d := range entry.dims {
			meta.Dims[i] = uint64(d)
		}

		if err := w.writeStructAt(int64(entry.metaOffset), &meta); err != nil {
			w.file.Close()
			return errors.Wrapf(err, "write metadata of %q", entry.name)
		}
		if _, err := w.file.WriteAt([]byte(entry.name), int64(entry.metaOffset)+Alignment); err != nil {
			w.file.Close()
			return errors.Wrapf(err, "write name of %q", entry.name)
		}
		if _, err := w.file.WriteAt(entry.data, int64(entry.dataOffset)); err != nil {
			w.file.Close()
			return errors.Wrapf(err, "write data of %q", entry.name)
		}
	}

	return w.file.Close()
}

func (w *Writer) writeStructAt(offset int64, data any) error {
	if _, err := w.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(w.file, binary.LittleEndian, data)
}

func encode(dtype DType, values []float64) []byte {
	data := make([]byte, dtype.ElemSize()*len(values))
	switch dtype {
	case Float32:
		for i, v := range values {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(v)))
		}
	case Float64:
		for i, v := range values {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
		}
	}
	return data
}
