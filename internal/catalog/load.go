package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// catalogFile is the on-disk shape of a catalog artifact.
type catalogFile struct {
	Version   string           `yaml:"version"`
	Providers []model.Provider `yaml:"providers"`
}

// Load reads a catalog artifact from a YAML file and validates it.
// An empty path returns the built-in Default catalog.
func Load(path string) (*Static, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}
	if len(cf.Providers) == 0 {
		return nil, eris.Errorf("catalog: %s contains no providers", path)
	}

	s, err := NewStatic(cf.Providers)
	if err != nil {
		return nil, err
	}

	zap.L().Info("catalog: loaded artifact",
		zap.String("path", path),
		zap.String("version", cf.Version),
		zap.Int("providers", len(cf.Providers)),
	)

	return s, nil
}
