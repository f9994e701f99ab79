// Package scene persists application runs to disk, in numbered scene
// directories:
//
//	<root>/<category>/sim_000042/
//	  description.json          what ran here
//	  log_<scalar>.txt          one "<step> <value>" line per record
//	  checkpoint_00001000/      params.blob + meta.json
//	  frames/                   recorded field snapshots
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	xe "github.com/plumelab/plume/pkg/errors"
)

// Scene is one run directory.
type Scene struct {
	dir string
	id  int

	mu   sync.Mutex
	logs map[string]*os.File
}

// Dir is the absolute path of the scene directory.
func (s *Scene) Dir() string {
	return s.dir
}

// Id is the scene's number within its category.
func (s *Scene) Id() int {
	return s.id
}

const dirPattern = "sim_%06d"

// Create makes the next scene directory under <root>/<category>.
//
// Ids are monotonic per category: the new id is one past the largest
// existing one, so deleting old scenes never causes reuse.
func Create(root, category string) (*Scene, error) {
	parent := filepath.Join(root, category)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, xe.Wrap(err)
	}

	maxId := -1
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	for _, entry := range entries {
		var id int
		if n, _ := fmt.Sscanf(entry.Name(), dirPattern, &id); n == 1 && entry.IsDir() {
			if maxId < id {
				maxId = id
			}
		}
	}

	id := maxId + 1
	dir := filepath.Join(parent, fmt.Sprintf(dirPattern, id))
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, xe.Wrap(err)
	}
	return &Scene{dir: dir, id: id, logs: map[string]*os.File{}}, nil
}

// Open opens an existing scene directory.
func Open(dir string) (*Scene, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if !info.IsDir() {
		return nil, xe.New(fmt.Sprintf("%s is not a directory", dir))
	}

	var id int
	if n, _ := fmt.Sscanf(filepath.Base(dir), dirPattern, &id); n != 1 {
		return nil, xe.New(fmt.Sprintf("%s is not a scene directory (want sim_NNNNNN)", dir))
	}
	return &Scene{dir: dir, id: id, logs: map[string]*os.File{}}, nil
}

// List opens all scenes under <root>/<category>, ordered by id.
func List(root, category string) ([]*Scene, error) {
	parent := filepath.Join(root, category)
	entries, err := os.ReadDir(parent)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, xe.Wrap(err)
	}

	scenes := []*Scene{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var id int
		if n, _ := fmt.Sscanf(entry.Name(), dirPattern, &id); n != 1 {
			continue
		}
		scenes = append(scenes, &Scene{
			dir:  filepath.Join(parent, entry.Name()),
			id:   id,
			logs: map[string]*os.File{},
		})
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].id < scenes[j].id })
	return scenes, nil
}

// Close releases open scalar log handles. The scene can be reused;
// the next append reopens its log.
func (s *Scene) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for name, f := range s.logs {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(s.logs, name)
	}
	return lastErr
}

// Description records what the scene ran.
type Description struct {
	Name       string             `json:"name"`
	Subtitle   string             `json:"subtitle,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	Fields     []string           `json:"fields,omitempty"`
	Objectives []string           `json:"objectives,omitempty"`
	Controls   map[string]float64 `json:"controls,omitempty"`
}

const descriptionFile = "description.json"

func (s *Scene) WriteDescription(d Description) error {
	buf, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return xe.Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, descriptionFile), append(buf, '\n'), 0644); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (s *Scene) ReadDescription() (Description, error) {
	buf, err := os.ReadFile(filepath.Join(s.dir, descriptionFile))
	if err != nil {
		return Description{}, xe.Wrap(err)
	}
	d := Description{}
	if err := json.Unmarshal(buf, &d); err != nil {
		return Description{}, xe.WrapWithNote(fmt.Sprintf("broken description in %s", s.dir), err)
	}
	return d, nil
}
