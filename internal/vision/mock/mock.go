package mock

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

// Detector implements vision.Detector deterministically for tests and
// development. Any decodable frame of reasonable size contains exactly one
// face covering the central 80% of it.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 32 || h < 32 {
		return nil, nil
	}

	return []domain.BoundingBox{{
		X:      bounds.Min.X + w/10,
		Y:      bounds.Min.Y + h/10,
		Width:  w * 8 / 10,
		Height: h * 8 / 10,
	}}, nil
}

// Model implements vision.Model with a perceptual difference hash per
// sample: deterministic, cheap and stable across runs, which is all the
// orchestration tests need.
type Model struct {
	mu sync.RWMutex
	// one signature per stored sample, in training order
	sigs   []uint64
	labels []int
}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sigs) > 0
}

func (m *Model) Train(ctx context.Context, samples []*image.Gray, labels []int) error {
	if len(samples) != len(labels) {
		return errors.New("samples and labels length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sigs = m.sigs[:0]
	m.labels = m.labels[:0]
	return m.append(samples, labels)
}

func (m *Model) Update(ctx context.Context, samples []*image.Gray, labels []int) error {
	if len(samples) != len(labels) {
		return errors.New("samples and labels length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.append(samples, labels)
}

func (m *Model) append(samples []*image.Gray, labels []int) error {
	for i, s := range samples {
		m.sigs = append(m.sigs, signature(s))
		m.labels = append(m.labels, labels[i])
	}
	return nil
}

func (m *Model) Predict(ctx context.Context, sample *image.Gray) (vision.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.sigs) == 0 {
		return vision.Prediction{}, domain.ErrModelUntrained
	}

	sig := signature(sample)
	best := vision.Prediction{Label: m.labels[0], Distance: 101}
	for i, s := range m.sigs {
		d := float64(hamming(sig, s)) * 100 / 64
		if d < best.Distance {
			best = vision.Prediction{Label: m.labels[i], Distance: d}
		}
	}
	return best, nil
}

type state struct {
	Sigs   []uint64 `json:"sigs"`
	Labels []int    `json:"labels"`
}

func (m *Model) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.Marshal(state{Sigs: m.sigs, Labels: m.labels})
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}

func (m *Model) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sigs = st.Sigs
	m.labels = st.Labels
	return nil
}

// signature computes a 64-bit difference hash: the sample is reduced to a
// 9x8 intensity grid and adjacent cells are compared horizontally.
func signature(gray *image.Gray) uint64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var grid [9][8]int
	for gx := 0; gx < 9; gx++ {
		for gy := 0; gy < 8; gy++ {
			x := bounds.Min.X + gx*w/9
			y := bounds.Min.Y + gy*h/8
			grid[gx][gy] = int(gray.GrayAt(x, y).Y)
		}
	}

	var sig uint64
	bit := 63
	for gy := 0; gy < 8; gy++ {
		for gx := 0; gx < 8; gx++ {
			if grid[gx][gy] > grid[gx+1][gy] {
				sig |= 1 << bit
			}
			bit--
		}
	}
	return sig
}

func hamming(a, b uint64) int {
	xor := a ^ b
	n := 0
	for xor != 0 {
		n++
		xor &= xor - 1
	}
	return n
}

var (
	_ vision.Detector = (*Detector)(nil)
	_ vision.Model    = (*Model)(nil)
)
