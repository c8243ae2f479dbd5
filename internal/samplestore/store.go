// Package samplestore persists enrollment face samples on the local
// filesystem, one directory per identity with sequentially numbered
// JPEG files: dataset/<identity>/<identity>.<seq>.jpg
package samplestore

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"

	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
)

type Store struct {
	root string
}

// New creates a store rooted at dataDir/dataset.
func New(dataDir string) (*Store, error) {
	root := filepath.Join(dataDir, "dataset")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create dataset dir: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) identityDir(identity string) string {
	// identities are directory names; keep path separators out
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, identity)
	return filepath.Join(s.root, safe)
}

// Save writes one normalized sample for the identity and returns its
// sequence number (count of previously stored samples + 1).
func (s *Store) Save(identity string, sample *image.Gray) (int, error) {
	dir := s.identityDir(identity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create sample dir for %s: %w", identity, err)
	}

	count, err := s.Count(identity)
	if err != nil {
		return 0, err
	}
	seq := count + 1

	data, err := imaging.EncodeJPEG(sample)
	if err != nil {
		return 0, err
	}

	name := filepath.Join(dir, fmt.Sprintf("%s.%d.jpg", filepath.Base(dir), seq))
	if err := renameio.WriteFile(name, data, 0o644); err != nil {
		return 0, fmt.Errorf("write sample %s: %w", name, err)
	}
	return seq, nil
}

// Count returns the number of stored samples for the identity. A missing
// directory counts as zero.
func (s *Store) Count(identity string) (int, error) {
	entries, err := os.ReadDir(s.identityDir(identity))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sample dir for %s: %w", identity, err)
	}

	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jpg") {
			n++
		}
	}
	return n, nil
}

// Load reads all stored samples for the identity in sequence order.
func (s *Store) Load(identity string) ([][]byte, error) {
	dir := s.identityDir(identity)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sample dir for %s: %w", identity, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jpg") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return seqOf(names[i]) < seqOf(names[j])
	})

	samples := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read sample %s: %w", name, err)
		}
		samples = append(samples, data)
	}
	return samples, nil
}

// Clear removes every stored sample for the identity, resetting its
// sequence numbering. Called when a fresh capture session starts.
func (s *Store) Clear(identity string) error {
	err := os.RemoveAll(s.identityDir(identity))
	if err != nil {
		return fmt.Errorf("clear samples for %s: %w", identity, err)
	}
	return nil
}

// seqOf parses the sequence number out of "<identity>.<seq>.jpg";
// malformed names sort first.
func seqOf(name string) int {
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return -1
	}
	var seq int
	if _, err := fmt.Sscanf(parts[len(parts)-2], "%d", &seq); err != nil {
		return -1
	}
	return seq
}
