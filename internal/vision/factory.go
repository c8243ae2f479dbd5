package vision

import (
	"context"
	"fmt"
)

// DetectorType defines supported face localization providers
type DetectorType string

const (
	// DetectorTypePigo is the embedded pure-Go detector (local, default)
	DetectorTypePigo DetectorType = "pigo"
	// DetectorTypeRekognition is the AWS Rekognition detector (cloud)
	DetectorTypeRekognition DetectorType = "rekognition"
	// DetectorTypeMock is the deterministic detector for dev/test
	DetectorTypeMock DetectorType = "mock"
)

// ModelType defines supported appearance-model providers
type ModelType string

const (
	// ModelTypeLBPH is the embedded local-binary-pattern model (default)
	ModelTypeLBPH ModelType = "lbph"
	// ModelTypeMock is the deterministic model for dev/test
	ModelTypeMock ModelType = "mock"
)

// DetectorFactory builds a Detector for a configured type. Registered by
// the concrete provider packages to keep this package free of their
// dependencies.
type DetectorFactory func(ctx context.Context) (Detector, error)

// ModelFactory builds a Model for a configured type.
type ModelFactory func() (Model, error)

// Registry resolves configured provider names to constructors. The caller
// (cmd/api) registers the providers it links in.
type Registry struct {
	detectors map[DetectorType]DetectorFactory
	models    map[ModelType]ModelFactory
}

func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[DetectorType]DetectorFactory),
		models:    make(map[ModelType]ModelFactory),
	}
}

func (r *Registry) RegisterDetector(t DetectorType, f DetectorFactory) {
	r.detectors[t] = f
}

func (r *Registry) RegisterModel(t ModelType, f ModelFactory) {
	r.models[t] = f
}

// NewDetector creates a Detector instance based on configuration.
func (r *Registry) NewDetector(ctx context.Context, name string) (Detector, error) {
	t := DetectorType(name)
	if t == "" {
		t = DetectorTypePigo
	}
	factory, ok := r.detectors[t]
	if !ok {
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s, %s)",
			name, DetectorTypePigo, DetectorTypeRekognition, DetectorTypeMock)
	}
	return factory(ctx)
}

// NewModel creates a Model instance based on configuration.
func (r *Registry) NewModel(name string) (Model, error) {
	t := ModelType(name)
	if t == "" {
		t = ModelTypeLBPH
	}
	factory, ok := r.models[t]
	if !ok {
		return nil, fmt.Errorf("unknown model type: %s (supported: %s, %s)",
			name, ModelTypeLBPH, ModelTypeMock)
	}
	return factory()
}
