package notifiers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/readstack-hq/pocket2notion/internal/logger"
)

func TestRegistryNotifierFor(t *testing.T) {
	reg := NewRegistry(map[string]Builder{
		"stub": func(_ context.Context, cfg NotifierConfig, _ logger.Logger) (Notifier, error) {
			return &stubNotifier{id: cfg.ID}, nil
		},
	})

	sink, err := reg.NotifierFor(context.Background(), NotifierConfig{ID: "a", Type: "stub"}, nil)
	if err != nil {
		t.Fatalf("NotifierFor: %v", err)
	}
	if sink.ID() != "a" {
		t.Fatalf("builder not invoked with config: %s", sink.ID())
	}

	if _, err := reg.NotifierFor(context.Background(), NotifierConfig{ID: "b", Type: "telegraph"}, nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
	if _, err := reg.NotifierFor(context.Background(), NotifierConfig{ID: "c"}, nil); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestBuildAll(t *testing.T) {
	reg := NewRegistry(map[string]Builder{
		"stub": func(_ context.Context, cfg NotifierConfig, _ logger.Logger) (Notifier, error) {
			return &stubNotifier{id: cfg.ID}, nil
		},
	})

	cfgs := []NotifierConfig{
		{ID: "a", Type: "stub"},
		{ID: "b", Type: "stub"},
	}
	sinks, err := BuildAll(context.Background(), reg, cfgs, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(sinks))
	}
}

func TestBuildAllStopsOnError(t *testing.T) {
	broken := errors.New("no credentials")
	reg := NewRegistry(map[string]Builder{
		"stub": func(_ context.Context, cfg NotifierConfig, _ logger.Logger) (Notifier, error) {
			if cfg.ID == "bad" {
				return nil, broken
			}
			return &stubNotifier{id: cfg.ID}, nil
		},
	})

	cfgs := []NotifierConfig{
		{ID: "good", Type: "stub"},
		{ID: "bad", Type: "stub"},
	}
	if _, err := BuildAll(context.Background(), reg, cfgs, nil); !errors.Is(err, broken) {
		t.Fatalf("expected builder error, got %v", err)
	}
}

func TestDefaultRegistryKnowsAllTypes(t *testing.T) {
	reg := DefaultRegistry()

	// Missing per-type config means the builder ran, not that the type is unknown.
	for _, typ := range []string{TypeHTTP, TypeSQS, TypeSNS, TypePubSub} {
		_, err := reg.NotifierFor(context.Background(), NotifierConfig{ID: "x", Type: typ}, nil)
		if err == nil {
			t.Fatalf("expected config error for %s", typ)
		}
		if strings.Contains(err.Error(), "no notifier registered") {
			t.Fatalf("type %s should be registered: %v", typ, err)
		}
	}
}
