package vision

import (
	"context"
	"image"
	"sync"
)

// Guard wraps the shared Model with single-writer/multiple-reader
// discipline: predictions may run concurrently, but a train or update
// excludes every other call for its full duration.
type Guard struct {
	mu    sync.RWMutex
	model Model
}

func NewGuard(model Model) *Guard {
	return &Guard{model: model}
}

// Predict runs one prediction under the read lock.
func (g *Guard) Predict(ctx context.Context, sample *image.Gray) (Prediction, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model.Predict(ctx, sample)
}

// Trained reports whether the model has learned anything yet.
func (g *Guard) Trained() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model.Trained()
}

// Mutate runs fn with exclusive access to the model. Used for the whole
// train-update-persist sequence so readers never observe a half-written
// state.
func (g *Guard) Mutate(fn func(Model) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.model)
}
