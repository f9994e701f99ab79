package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	xe "github.com/plumelab/plume/pkg/errors"
)

// Curve is a recorded scalar summary: one value per logged step.
type Curve struct {
	Steps  []int     `json:"steps"`
	Values []float64 `json:"values"`
}

// Len is the point count.
func (c Curve) Len() int {
	return len(c.Steps)
}

// Since drops points at steps before the given one.
func (c Curve) Since(step int) Curve {
	at := sort.SearchInts(c.Steps, step)
	return Curve{Steps: c.Steps[at:], Values: c.Values[at:]}
}

// Smoothed returns the curve's values convolved with a centered
// uniform window of the given width. The window shrinks near the
// edges, so the smoothed curve keeps the original length and no
// boundary padding leaks into the average.
func (c Curve) Smoothed(window int) []float64 {
	if window <= 1 || len(c.Values) == 0 {
		out := make([]float64, len(c.Values))
		copy(out, c.Values)
		return out
	}
	half := window / 2
	out := make([]float64, len(c.Values))
	for i := range c.Values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if len(c.Values)-1 < hi {
			hi = len(c.Values) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j += 1 {
			sum += c.Values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func logFile(name string) string {
	// scalar names become file names; keep them path-safe
	return "log_" + strings.ReplaceAll(name, string(filepath.Separator), "_") + ".txt"
}

// AppendScalar records one point of the named summary. Each point is
// written as a single "<step> <value>" line in one write call, so
// concurrent appends from one process never tear lines.
func (s *Scene) AppendScalar(name string, step int, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.logs[name]
	if !ok {
		var err error
		f, err = os.OpenFile(
			filepath.Join(s.dir, logFile(name)),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644,
		)
		if err != nil {
			return xe.Wrap(err)
		}
		s.logs[name] = f
	}

	line := fmt.Sprintf("%d %g\n", step, value)
	if _, err := f.WriteString(line); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// ReadScalar loads the named summary curve. Malformed lines (torn
// writes from a crashed run) are skipped.
func (s *Scene) ReadScalar(name string) (Curve, error) {
	f, err := os.Open(filepath.Join(s.dir, logFile(name)))
	if err != nil {
		return Curve{}, xe.Wrap(err)
	}
	defer f.Close()

	curve := Curve{Steps: []int{}, Values: []float64{}}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) != 2 {
			continue
		}
		step, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		curve.Steps = append(curve.Steps, step)
		curve.Values = append(curve.Values, value)
	}
	if err := scanner.Err(); err != nil {
		return Curve{}, xe.Wrap(err)
	}
	return curve, nil
}

// ScalarNames lists the summaries recorded in this scene, sorted.
func (s *Scene) ScalarNames() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "log_*.txt"))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(base, "log_"), ".txt"))
	}
	sort.Strings(names)
	return names, nil
}
