package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/agora/pkg/domain"
	"gopkg.in/yaml.v3"
)

// File is the structure of a motions catalogue (motions.yaml or motions.json).
type File struct {
	Motions []domain.Motion `yaml:"motions" json:"motions"`
}

// LoadFile reads a catalogue file (YAML or JSON, chosen by extension) and validates every motion.
func LoadFile(path string) ([]domain.Motion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read motions catalogue: %w", err)
	}

	var cfg File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := validate(cfg.Motions); err != nil {
		return nil, err
	}
	return cfg.Motions, nil
}

func validate(motions []domain.Motion) error {
	if len(motions) == 0 {
		return fmt.Errorf("%w: catalogue has no motions", domain.ErrInvalidMotion)
	}
	for _, m := range motions {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}
