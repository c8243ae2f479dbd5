package recognition

import (
	"context"
	"image"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

type fakeModel struct {
	trained  bool
	pred     vision.Prediction
	predErr  error
}

func (f *fakeModel) Trained() bool { return f.trained }
func (f *fakeModel) Train(context.Context, []*image.Gray, []int) error  { return nil }
func (f *fakeModel) Update(context.Context, []*image.Gray, []int) error { return nil }
func (f *fakeModel) Save(string) error                                  { return nil }
func (f *fakeModel) Load(string) error                                  { return nil }

func (f *fakeModel) Predict(context.Context, *image.Gray) (vision.Prediction, error) {
	if f.predErr != nil {
		return vision.Prediction{}, f.predErr
	}
	return f.pred, nil
}

type fakeResolver map[int]string

func (f fakeResolver) Name(label int) (string, bool) {
	name, ok := f[label]
	return name, ok
}

func testRegions(n int) []intake.Region {
	regions := make([]intake.Region, 0, n)
	for i := 0; i < n; i++ {
		regions = append(regions, intake.Region{
			Gray: image.NewGray(image.Rect(0, 0, 64, 64)),
			Box:  domain.BoundingBox{X: i * 10, Y: 0, Width: 50, Height: 50},
		})
	}
	return regions
}

func TestScorer_Score(t *testing.T) {
	tests := []struct {
		name           string
		model          *fakeModel
		resolver       fakeResolver
		claimed        string
		wantName       string
		wantConfidence float64
		wantMatch      bool
	}{
		{
			name:           "known identity with matching claim",
			model:          &fakeModel{trained: true, pred: vision.Prediction{Label: 0, Distance: 12.5}},
			resolver:       fakeResolver{0: "jane"},
			claimed:        "jane",
			wantName:       "jane",
			wantConfidence: 87.5,
			wantMatch:      true,
		},
		{
			name:           "unmapped label resolves to unknown",
			model:          &fakeModel{trained: true, pred: vision.Prediction{Label: 7, Distance: 20}},
			resolver:       fakeResolver{0: "jane"},
			claimed:        "jane",
			wantName:       domain.UnknownName,
			wantConfidence: 80,
			wantMatch:      false,
		},
		{
			name:           "distance above 100 clamps confidence to zero",
			model:          &fakeModel{trained: true, pred: vision.Prediction{Label: 0, Distance: 150}},
			resolver:       fakeResolver{0: "jane"},
			claimed:        "jane",
			wantName:       "jane",
			wantConfidence: 0,
			wantMatch:      true,
		},
		{
			name:           "negative distance clamps confidence to hundred",
			model:          &fakeModel{trained: true, pred: vision.Prediction{Label: 0, Distance: -5}},
			resolver:       fakeResolver{0: "jane"},
			claimed:        "jane",
			wantName:       "jane",
			wantConfidence: 100,
			wantMatch:      true,
		},
		{
			name:           "untrained model degrades to unknown",
			model:          &fakeModel{predErr: domain.ErrModelUntrained},
			resolver:       fakeResolver{},
			claimed:        "jane",
			wantName:       domain.UnknownName,
			wantConfidence: 0,
			wantMatch:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewScorer(vision.NewGuard(tt.model), tt.resolver, slog.Default())

			results, err := scorer.Score(context.Background(), testRegions(1), tt.claimed)
			require.NoError(t, err)
			require.Len(t, results, 1)

			assert.Equal(t, tt.wantName, results[0].Name)
			assert.Equal(t, tt.wantConfidence, results[0].Confidence)
			assert.Equal(t, tt.wantMatch, results[0].NameMatch)
		})
	}
}

func TestScorer_Score_OneResultPerRegion(t *testing.T) {
	model := &fakeModel{trained: true, pred: vision.Prediction{Label: 0, Distance: 10}}
	scorer := NewScorer(vision.NewGuard(model), fakeResolver{0: "jane"}, slog.Default())

	results, err := scorer.Score(context.Background(), testRegions(3), "jane")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestScorer_Score_EmptyInput(t *testing.T) {
	model := &fakeModel{trained: true}
	scorer := NewScorer(vision.NewGuard(model), fakeResolver{}, slog.Default())

	results, err := scorer.Score(context.Background(), nil, "jane")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNameMatches(t *testing.T) {
	tests := []struct {
		name     string
		claimed  string
		resolved string
		want     bool
	}{
		{"exact match", "jane", "jane", true},
		{"case insensitive", "Jane", "JANE", true},
		{"claimed contains resolved", "jane doe", "jane", true},
		{"resolved contains claimed", "jane", "jane doe", true},
		{"surrounding whitespace", "  jane  ", "jane", true},
		{"different names", "jane", "joe", false},
		{"empty claimed", "", "jane", false},
		{"empty resolved", "jane", "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameMatches(tt.claimed, tt.resolved))
		})
	}
}
