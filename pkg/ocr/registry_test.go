package ocr

import (
	"context"
	"testing"
)

type fakeProvider struct {
	name string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) ValidateConfig(config Config) error { return nil }

func (p *fakeProvider) Recognize(ctx context.Context, config Config, image []byte) (Result, error) {
	return Result{}, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeProvider{name: "Paddle"})

	if !registry.HasProvider("paddle") {
		t.Error("Expected lookup to be case insensitive")
	}

	provider, err := registry.Get("PADDLE")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if provider.Name() != "Paddle" {
		t.Errorf("Name() = %q, want Paddle", provider.Name())
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("Expected error for unknown provider")
	}

	if got := len(registry.List()); got != 1 {
		t.Errorf("List() returned %d names, want 1", got)
	}
}
