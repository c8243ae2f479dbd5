package training

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio"
)

// LabelMap is the single source of truth for translating model labels
// back into identities. Labels are dense integers assigned in order of
// first enrollment; entries are never removed, only the whole map is
// rewritten on persist.
type LabelMap struct {
	mu    sync.RWMutex
	names []string       // index is the label
	index map[string]int // identity -> label
	path  string
}

// LoadLabelMap reads the persisted map, or starts empty if none exists.
func LoadLabelMap(path string) (*LabelMap, error) {
	m := &LabelMap{
		index: make(map[string]int),
		path:  path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read label map: %w", err)
	}

	if err := json.Unmarshal(data, &m.names); err != nil {
		return nil, fmt.Errorf("parse label map: %w", err)
	}
	for label, name := range m.names {
		m.index[name] = label
	}
	return m, nil
}

// Len returns the number of mapped identities.
func (m *LabelMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

// Name resolves a label to its identity.
func (m *LabelMap) Name(label int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if label < 0 || label >= len(m.names) {
		return "", false
	}
	return m.names[label], true
}

// Label returns the label already assigned to an identity, if any.
func (m *LabelMap) Label(identity string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	label, ok := m.index[identity]
	return label, ok
}

// Assign returns the identity's label, allocating the next dense label
// for identities seen for the first time.
func (m *LabelMap) Assign(identity string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if label, ok := m.index[identity]; ok {
		return label
	}
	label := len(m.names)
	m.names = append(m.names, identity)
	m.index[identity] = label
	return label
}

// Snapshot returns an immutable copy of the label table for readers.
func (m *LabelMap) Snapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Save persists the map atomically (temp file + rename).
func (m *LabelMap) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.Marshal(m.names)
	if err != nil {
		return fmt.Errorf("marshal label map: %w", err)
	}
	if err := renameio.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write label map: %w", err)
	}
	return nil
}
