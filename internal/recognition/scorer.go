// Package recognition scores validated face regions against the shared
// model and attaches the claimed-name signal.
package recognition

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

// NameResolver translates model labels back into identity names.
type NameResolver interface {
	Name(label int) (string, bool)
}

type Scorer struct {
	guard    *vision.Guard
	resolver NameResolver
	logger   *slog.Logger
}

func NewScorer(guard *vision.Guard, resolver NameResolver, logger *slog.Logger) *Scorer {
	return &Scorer{
		guard:    guard,
		resolver: resolver,
		logger:   logger,
	}
}

// Score produces one RecognitionResult per input region. An untrained
// model degrades every result to "Unknown" instead of failing.
//
// Confidence is 100 minus the model's distance, clamped to [0,100]; the
// underlying distance metric is unbounded above, so the clamp keeps
// degenerate values out of client payloads.
func (s *Scorer) Score(ctx context.Context, regions []intake.Region, claimed string) ([]domain.RecognitionResult, error) {
	results := make([]domain.RecognitionResult, 0, len(regions))

	for _, region := range regions {
		sample := imaging.ResizeGray(region.Gray, vision.CanonicalSize)

		result := domain.RecognitionResult{
			Box:  region.Box,
			Name: domain.UnknownName,
		}

		pred, err := s.guard.Predict(ctx, sample)
		switch {
		case errors.Is(err, domain.ErrModelUntrained):
			s.logger.Debug("predict against untrained model, reporting unknown")
		case err != nil:
			return nil, err
		default:
			result.Confidence = clampConfidence(100 - pred.Distance)
			if name, ok := s.resolver.Name(pred.Label); ok {
				result.Name = name
			}
		}

		result.NameMatch = NameMatches(claimed, result.Name)
		results = append(results, result)
	}

	return results, nil
}

// NameMatches applies the loose bidirectional substring rule: either
// name containing the other, case-insensitively, counts as a match.
// Deliberately permissive; tighten here if a deployment needs exact
// matching.
func NameMatches(claimed, resolved string) bool {
	c := strings.ToLower(strings.TrimSpace(claimed))
	r := strings.ToLower(strings.TrimSpace(resolved))
	if c == "" || r == "" {
		return false
	}
	return strings.Contains(c, r) || strings.Contains(r, c)
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
