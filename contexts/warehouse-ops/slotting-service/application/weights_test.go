package application

import (
	"os"
	"path/filepath"
	"testing"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/slotting"
)

func TestLoadWeightsDefaultsWhenUnset(t *testing.T) {
	weights, err := LoadWeights("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if weights != slotting.DefaultWeights() {
		t.Fatalf("expected defaults, got %+v", weights)
	}

	weights, err = LoadWeights(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if weights != slotting.DefaultWeights() {
		t.Fatalf("expected defaults for missing file, got %+v", weights)
	}
}

func TestLoadWeightsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("abc_velocity: 0.5\nproximity: 0.1\n"), 0o644); err != nil {
		t.Fatalf("write weights file failed: %v", err)
	}

	weights, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if weights.AbcVelocity != 0.5 || weights.Proximity != 0.1 {
		t.Fatalf("overrides not applied: %+v", weights)
	}
	defaults := slotting.DefaultWeights()
	if weights.Capacity != defaults.Capacity || weights.Hazard != defaults.Hazard {
		t.Fatalf("unset fields must keep defaults: %+v", weights)
	}
}

func TestLoadWeightsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml"), 0o644); err != nil {
		t.Fatalf("write weights file failed: %v", err)
	}
	if _, err := LoadWeights(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
