package application

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/slotting"
)

type weightsFile struct {
	AbcVelocity *float64 `yaml:"abc_velocity"`
	Proximity   *float64 `yaml:"proximity"`
	Capacity    *float64 `yaml:"capacity"`
	Temperature *float64 `yaml:"temperature"`
	Fefo        *float64 `yaml:"fefo"`
	Hazard      *float64 `yaml:"hazard"`
}

// LoadWeights reads scoring weight overrides from a YAML file. A missing
// path (or empty string) yields the defaults; fields absent from the file
// keep their default value.
func LoadWeights(path string) (slotting.Weights, error) {
	weights := slotting.DefaultWeights()
	if path == "" {
		return weights, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return weights, nil
		}
		return slotting.Weights{}, fmt.Errorf("read slotting weights: %w", err)
	}
	var file weightsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return slotting.Weights{}, fmt.Errorf("parse slotting weights: %w", err)
	}
	apply := func(target *float64, value *float64) {
		if value != nil && *value >= 0 {
			*target = *value
		}
	}
	apply(&weights.AbcVelocity, file.AbcVelocity)
	apply(&weights.Proximity, file.Proximity)
	apply(&weights.Capacity, file.Capacity)
	apply(&weights.Temperature, file.Temperature)
	apply(&weights.Fefo, file.Fefo)
	apply(&weights.Hazard, file.Hazard)
	return weights, nil
}
