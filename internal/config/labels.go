package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

type labelPolicyFile struct {
	Allowed []string          `yaml:"allowed"`
	Aliases map[string]string `yaml:"aliases"`
}

// LoadLabelPolicy reads the entity label policy from YAML. An empty path
// yields the built-in policy.
func LoadLabelPolicy(path string) (domain.LabelPolicy, error) {
	if path == "" {
		return domain.DefaultLabelPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.LabelPolicy{}, fmt.Errorf("read label policy: %w", err)
	}

	var file labelPolicyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.LabelPolicy{}, fmt.Errorf("parse label policy: %w", err)
	}
	if len(file.Allowed) == 0 {
		return domain.LabelPolicy{}, fmt.Errorf("label policy %s allows no labels", path)
	}

	allowed := make([]domain.EntityLabel, 0, len(file.Allowed))
	for _, label := range file.Allowed {
		allowed = append(allowed, domain.EntityLabel(label))
	}
	aliases := make(map[string]domain.EntityLabel, len(file.Aliases))
	for from, to := range file.Aliases {
		aliases[from] = domain.EntityLabel(to)
	}
	return domain.NewLabelPolicy(allowed, aliases), nil
}
