package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plumelab/plume/pkg/blob"
	xe "github.com/plumelab/plume/pkg/errors"
)

const framesDir = "frames"

// WriteFrame records a field snapshot as frames/<field>_<step>.blob.
// fill receives the open writer and adds the snapshot's entries.
func (s *Scene) WriteFrame(fieldName string, step int, fill func(*blob.Writer) error) error {
	dir := filepath.Join(s.dir, framesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return xe.Wrap(err)
	}

	name := strings.ReplaceAll(fieldName, string(filepath.Separator), "_")
	w, err := blob.NewWriter(filepath.Join(dir, fmt.Sprintf("%s_%06d.blob", name, step)))
	if err != nil {
		return xe.Wrap(err)
	}
	if err := fill(w); err != nil {
		w.Close()
		return xe.Wrap(err)
	}
	if err := w.Close(); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// OpenFrame opens a recorded snapshot for reading.
// Callers close the reader.
func (s *Scene) OpenFrame(fieldName string, step int) (*blob.Reader, error) {
	name := strings.ReplaceAll(fieldName, string(filepath.Separator), "_")
	r, err := blob.Open(filepath.Join(s.dir, framesDir, fmt.Sprintf("%s_%06d.blob", name, step)))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return r, nil
}

// FrameSteps lists the recorded steps of a field, in file order.
func (s *Scene) FrameSteps(fieldName string) ([]int, error) {
	name := strings.ReplaceAll(fieldName, string(filepath.Separator), "_")
	matches, err := filepath.Glob(filepath.Join(s.dir, framesDir, name+"_*.blob"))
	if err != nil {
		return nil, xe.Wrap(err)
	}

	steps := make([]int, 0, len(matches))
	for _, m := range matches {
		var step int
		base := filepath.Base(m)
		if n, _ := fmt.Sscanf(strings.TrimPrefix(base, name+"_"), "%d.blob", &step); n == 1 {
			steps = append(steps, step)
		}
	}
	return steps, nil
}
