// Package lbph implements the appearance-model capability with local
// binary patterns: each face region is summarized as a grid of LBP
// histograms and identities are matched by chi-square distance to the
// per-label mean histogram.
package lbph

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"os"
	"sync"

	"github.com/google/renameio"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

const (
	// gridCells splits the region into gridCells x gridCells histogram cells
	gridCells = 4
	// bins per cell, one per 8-bit LBP code
	bins = 256
	// histLen is the length of a full concatenated descriptor
	histLen = gridCells * gridCells * bins
	// distanceScale maps the chi-square range [0,2] onto [0,100]
	distanceScale = 50.0
)

type classRef struct {
	Hist  []float64 `json:"hist"`
	Count int       `json:"count"`
}

// Model is a trainable LBPH classifier. Safe for concurrent use; the
// recognition guard additionally serializes train against predict at the
// call level.
type Model struct {
	mu      sync.RWMutex
	classes map[int]*classRef
}

func New() *Model {
	return &Model{classes: make(map[int]*classRef)}
}

func (m *Model) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.classes) > 0
}

// Train discards all learned classes and fits the given batch.
func (m *Model) Train(ctx context.Context, samples []*image.Gray, labels []int) error {
	if len(samples) != len(labels) {
		return errors.New("samples and labels length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes = make(map[int]*classRef)
	return m.fold(ctx, samples, labels)
}

// Update folds the batch into the existing classes without touching
// labels absent from it.
func (m *Model) Update(ctx context.Context, samples []*image.Gray, labels []int) error {
	if len(samples) != len(labels) {
		return errors.New("samples and labels length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fold(ctx, samples, labels)
}

func (m *Model) fold(ctx context.Context, samples []*image.Gray, labels []int) error {
	for i, sample := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}

		hist := describe(sample)
		class := m.classes[labels[i]]
		if class == nil {
			class = &classRef{Hist: make([]float64, histLen)}
			m.classes[labels[i]] = class
		}

		// running mean over all samples seen for this label
		n := float64(class.Count)
		for j := range class.Hist {
			class.Hist[j] = (class.Hist[j]*n + hist[j]) / (n + 1)
		}
		class.Count++
	}
	return nil
}

// Predict returns the nearest label and its scaled chi-square distance.
func (m *Model) Predict(ctx context.Context, sample *image.Gray) (vision.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return vision.Prediction{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.classes) == 0 {
		return vision.Prediction{}, domain.ErrModelUntrained
	}

	hist := describe(sample)
	best := vision.Prediction{Label: -1, Distance: 0}
	for label, class := range m.classes {
		d := chiSquare(hist, class.Hist) * distanceScale
		if best.Label < 0 || d < best.Distance {
			best = vision.Prediction{Label: label, Distance: d}
		}
	}
	return best, nil
}

type state struct {
	Classes map[int]*classRef `json:"classes"`
}

// Save persists the model atomically (temp file + rename).
func (m *Model) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.Marshal(state{Classes: m.classes})
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}

// Load replaces the model state from a persisted copy.
func (m *Model) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Classes == nil {
		st.Classes = make(map[int]*classRef)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes = st.Classes
	return nil
}

// Labels returns the set of labels the model can currently emit.
func (m *Model) Labels() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := make([]int, 0, len(m.classes))
	for label := range m.classes {
		labels = append(labels, label)
	}
	return labels
}

// describe computes the concatenated, per-cell-normalized LBP histogram.
func describe(gray *image.Gray) []float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	hist := make([]float64, histLen)
	if w < 3 || h < 3 {
		return hist
	}

	cellW := w / gridCells
	cellH := h / gridCells
	counts := make([]int, gridCells*gridCells)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			code := lbpCode(gray, bounds.Min.X+x, bounds.Min.Y+y)

			cx := x / cellW
			if cx >= gridCells {
				cx = gridCells - 1
			}
			cy := y / cellH
			if cy >= gridCells {
				cy = gridCells - 1
			}
			cell := cy*gridCells + cx

			hist[cell*bins+int(code)]++
			counts[cell]++
		}
	}

	for cell, n := range counts {
		if n == 0 {
			continue
		}
		for b := 0; b < bins; b++ {
			hist[cell*bins+b] /= float64(n)
		}
	}
	return hist
}

// lbpCode compares a pixel to its 8 neighbors clockwise from top-left.
func lbpCode(gray *image.Gray, x, y int) uint8 {
	center := gray.GrayAt(x, y).Y
	var code uint8
	neighbors := [8][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{1, 0}, {1, 1}, {0, 1},
		{-1, 1}, {-1, 0},
	}
	for i, n := range neighbors {
		if gray.GrayAt(x+n[0], y+n[1]).Y >= center {
			code |= 1 << i
		}
	}
	return code
}

func chiSquare(a, b []float64) float64 {
	var d float64
	for i := range a {
		sum := a[i] + b[i]
		if sum == 0 {
			continue
		}
		diff := a[i] - b[i]
		d += diff * diff / sum
	}
	return d
}

var _ vision.Model = (*Model)(nil)
