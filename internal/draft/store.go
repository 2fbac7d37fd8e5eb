package draft

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey is the fixed name the draft persists under, shared by every
// Store implementation.
const StorageKey = "reservationFormData"

// Store is the durable persistence port for the draft. Implementations must
// survive a process restart where the medium allows it; Save is called on
// every draft mutation.
type Store interface {
	Load() (Draft, int, error)
	Save(d Draft, step int) error
	Clear() error
}

// MemoryStore keeps the draft in memory. Used by tests and short-lived
// clients that do not need reload survival.
type MemoryStore struct {
	mu    sync.Mutex
	draft Draft
	step  int
	saved bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored draft, or a fresh draft at step 1 when nothing was
// saved yet.
func (s *MemoryStore) Load() (Draft, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return NewDraft(), StepLocalization, nil
	}
	return s.draft, s.step, nil
}

// Save stores the draft and cursor.
func (s *MemoryStore) Save(d Draft, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
	s.step = step
	s.saved = true
	return nil
}

// Clear discards any stored draft.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = Draft{}
	s.step = 0
	s.saved = false
	return nil
}

type fileEnvelope struct {
	Draft       Draft `json:"draft"`
	CurrentStep int   `json:"currentStep"`
}

// FileStore persists the draft as one JSON document under a fixed file name
// in the given directory, so the wizard survives client restarts.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to dir/reservationFormData.json.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, StorageKey+".json")}
}

// Load reads the persisted draft. A missing file yields a fresh draft.
func (s *FileStore) Load() (Draft, int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDraft(), StepLocalization, nil
		}
		return Draft{}, 0, err
	}

	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Draft{}, 0, err
	}

	if env.CurrentStep < StepLocalization || env.CurrentStep > StepCount {
		env.CurrentStep = StepLocalization
	}
	return env.Draft, env.CurrentStep, nil
}

// Save writes the draft and cursor to disk.
func (s *FileStore) Save(d Draft, step int) error {
	data, err := json.MarshalIndent(fileEnvelope{Draft: d, CurrentStep: step}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the persisted file.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
