package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	domeval "github.com/kailas-cloud/headrag/internal/domain/evaluation"
)

// LoadDataset reads the ordered reference cases from a .json or .yaml/.yml file.
// The file holds a list of {question, ideal_answer} objects.
func LoadDataset(path string) ([]domeval.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var cases []domeval.Case
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cases)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cases)
	default:
		return nil, fmt.Errorf("dataset extension %q: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	if len(cases) == 0 {
		return nil, fmt.Errorf("dataset %s: %w", path, ErrEmptySource)
	}
	for i, c := range cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("dataset %s: case %d has no question", path, i)
		}
	}
	return cases, nil
}
