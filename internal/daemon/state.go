package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jfmyers9/earshot/internal/recognitionqueue"
)

// Status is the daemon's view of its own progress
type Status struct {
	LastRun        time.Time                           `json:"last_run"`
	Processed      map[recognitionqueue.ResultType]int `json:"processed,omitempty"`
	SuspendedUntil time.Time                           `json:"suspended_until,omitempty"`
	SuspendReason  string                              `json:"suspend_reason,omitempty"`
}

// Suspended reports whether processing is paused at now
func (s Status) Suspended(now time.Time) bool {
	return now.Before(s.SuspendedUntil)
}

// State manages the daemon status with thread-safe access and persistence
type State struct {
	mu       sync.RWMutex
	current  Status
	filePath string // Path to state file for persistence
}

// NewState creates a new State instance
// If filePath is provided, attempts to restore state from disk
func NewState(filePath string) (*State, error) {
	s := &State{
		filePath: filePath,
		current:  Status{Processed: map[recognitionqueue.ResultType]int{}},
	}

	if filePath != "" {
		if err := s.restore(); err != nil && !os.IsNotExist(err) {
			// Not fatal, the daemon starts fresh
			return s, err
		}
	}

	return s, nil
}

// LoadStatus reads a persisted status without taking ownership of the file
func LoadStatus(filePath string) (Status, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Status{}, err
	}
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Record counts a finished recognition
func (s *State) Record(t recognitionqueue.ResultType, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Processed == nil {
		s.current.Processed = map[recognitionqueue.ResultType]int{}
	}
	s.current.Processed[t]++
	s.current.LastRun = at
	return s.persist()
}

// Touch marks a processing round that found nothing to do
func (s *State) Touch(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.LastRun = at
	return s.persist()
}

// Suspend pauses processing until the given time
func (s *State) Suspend(until time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.SuspendedUntil = until
	s.current.SuspendReason = reason
	return s.persist()
}

// Resume clears any suspension
func (s *State) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.SuspendedUntil.IsZero() {
		return nil
	}
	s.current.SuspendedUntil = time.Time{}
	s.current.SuspendReason = ""
	return s.persist()
}

// GetStatus returns a copy of the current status
func (s *State) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.current
	st.Processed = make(map[recognitionqueue.ResultType]int, len(s.current.Processed))
	for k, v := range s.current.Processed {
		st.Processed[k] = v
	}
	return st
}

// persist saves the current status to disk
// Must be called with lock held
func (s *State) persist() error {
	if s.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	// Write atomically via temp file + rename
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.filePath)
}

// restore loads status from disk
func (s *State) restore() error {
	st, err := LoadStatus(s.filePath)
	if err != nil {
		return err
	}
	if st.Processed == nil {
		st.Processed = map[recognitionqueue.ResultType]int{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = st
	return nil
}
