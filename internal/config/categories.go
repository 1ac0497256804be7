package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

type categoriesFile struct {
	Categories []models.Category `yaml:"categories"`
}

// LoadCategories reads the category seed file. An empty path yields the
// built-in defaults.
func LoadCategories(path string) ([]models.Category, error) {
	if path == "" {
		return models.DefaultCategories(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file %s: %w", path, err)
	}

	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse categories file %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return nil, errors.New("categories file lists no categories")
	}

	seen := make(map[string]bool, len(file.Categories))
	for i, c := range file.Categories {
		value := strings.TrimSpace(c.Value)
		if value == "" || strings.TrimSpace(c.Label) == "" {
			return nil, fmt.Errorf("category %d: label and value are required", i)
		}
		if seen[value] {
			return nil, fmt.Errorf("category %d: duplicate value %q", i, value)
		}
		seen[value] = true
		file.Categories[i].Value = value
	}
	return file.Categories, nil
}
