package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/plumelab/plume/pkg/blob"
	xe "github.com/plumelab/plume/pkg/errors"
	"github.com/plumelab/plume/pkg/train"
)

const checkpointPattern = "checkpoint_%08d"

// Checkpoint is one saved parameter state.
type Checkpoint struct {
	Id        int       `json:"id"`
	Step      int       `json:"step"`
	CreatedAt time.Time `json:"created_at"`
}

type checkpointMeta struct {
	Step      int       `json:"step"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveCheckpoint writes all parameters into checkpoint_<step>/ as a
// blob at the given precision, plus a meta.json. Saving the same step
// twice overwrites. Returns the checkpoint id (= the step).
func (s *Scene) SaveCheckpoint(step int, params *train.Params, dtype blob.DType) (int, error) {
	dir := filepath.Join(s.dir, fmt.Sprintf(checkpointPattern, step))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, xe.Wrap(err)
	}

	w, err := blob.NewWriter(filepath.Join(dir, "params.blob"))
	if err != nil {
		return 0, xe.Wrap(err)
	}
	var addErr error
	params.Visit(func(name string, t *train.Tensor) {
		if addErr != nil {
			return
		}
		addErr = w.Add(name, t.Dims, dtype, t.Values)
	})
	if addErr != nil {
		w.Close()
		return 0, xe.Wrap(addErr)
	}
	if err := w.Close(); err != nil {
		return 0, xe.Wrap(err)
	}

	meta, err := json.Marshal(checkpointMeta{Step: step, CreatedAt: time.Now()})
	if err != nil {
		return 0, xe.Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), append(meta, '\n'), 0644); err != nil {
		return 0, xe.Wrap(err)
	}
	return step, nil
}

// Checkpoints lists saved checkpoints, ordered by id.
func (s *Scene) Checkpoints() ([]Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	checkpoints := []Checkpoint{}
	for _, entry := range entries {
		var id int
		if n, _ := fmt.Sscanf(entry.Name(), checkpointPattern, &id); n != 1 || !entry.IsDir() {
			continue
		}

		c := Checkpoint{Id: id, Step: id}
		buf, err := os.ReadFile(filepath.Join(s.dir, entry.Name(), "meta.json"))
		if err == nil {
			meta := checkpointMeta{}
			if json.Unmarshal(buf, &meta) == nil {
				c.Step = meta.Step
				c.CreatedAt = meta.CreatedAt
			}
		}
		checkpoints = append(checkpoints, c)
	}
	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].Id < checkpoints[j].Id
	})
	return checkpoints, nil
}

// LatestCheckpoint finds the newest checkpoint.
// ok is false when the scene has none.
func (s *Scene) LatestCheckpoint() (c Checkpoint, ok bool, err error) {
	checkpoints, err := s.Checkpoints()
	if err != nil {
		return Checkpoint{}, false, err
	}
	if len(checkpoints) == 0 {
		return Checkpoint{}, false, nil
	}
	return checkpoints[len(checkpoints)-1], true, nil
}

// LoadCheckpoint reads the parameter snapshot of the checkpoint with
// the given id. Feed the result to train.Params.Restore.
func (s *Scene) LoadCheckpoint(id int) (map[string][]float64, error) {
	path := filepath.Join(s.dir, fmt.Sprintf(checkpointPattern, id), "params.blob")
	r, err := blob.Open(path)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer r.Close()

	snapshot := map[string][]float64{}
	for _, entry := range r.Entries() {
		_, values, err := r.Read(entry.Name)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		snapshot[entry.Name] = values
	}
	return snapshot, nil
}
