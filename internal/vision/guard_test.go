package vision

import (
	"context"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingModel struct {
	mu       sync.Mutex
	trained  bool
	predicts int
	mutating bool
}

func (m *countingModel) Trained() bool { return m.trained }

func (m *countingModel) Train(context.Context, []*image.Gray, []int) error {
	m.trained = true
	return nil
}

func (m *countingModel) Update(context.Context, []*image.Gray, []int) error { return nil }
func (m *countingModel) Save(string) error                                  { return nil }
func (m *countingModel) Load(string) error                                  { return nil }

func (m *countingModel) Predict(context.Context, *image.Gray) (Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutating {
		return Prediction{}, assert.AnError
	}
	m.predicts++
	return Prediction{Label: 7, Distance: 3}, nil
}

func TestGuard_PredictDelegates(t *testing.T) {
	model := &countingModel{}
	guard := NewGuard(model)

	pred, err := guard.Predict(context.Background(), image.NewGray(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	assert.Equal(t, 7, pred.Label)
	assert.Equal(t, 1, model.predicts)
}

func TestGuard_TrainedReflectsMutation(t *testing.T) {
	model := &countingModel{}
	guard := NewGuard(model)
	assert.False(t, guard.Trained())

	err := guard.Mutate(func(m Model) error {
		return m.Train(context.Background(), nil, nil)
	})
	require.NoError(t, err)
	assert.True(t, guard.Trained())
}

func TestGuard_MutateExcludesReaders(t *testing.T) {
	model := &countingModel{}
	guard := NewGuard(model)

	// Readers racing a mutation must never observe the in-progress state.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := guard.Predict(context.Background(), image.NewGray(image.Rect(0, 0, 8, 8)))
				assert.NoError(t, err)
			}
		}()
	}

	for j := 0; j < 20; j++ {
		err := guard.Mutate(func(Model) error {
			model.mutating = true
			model.mutating = false
			return nil
		})
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestGuard_MutatePropagatesError(t *testing.T) {
	guard := NewGuard(&countingModel{})
	err := guard.Mutate(func(Model) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}
