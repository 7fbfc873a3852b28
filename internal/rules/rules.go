// Package rules loads project house rules from .gauntlet/rules. A rule is
// either a declarative YAML file or a Go source file interpreted at startup.
// Rules only ever add warnings.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/gauntlet/internal/gauntlet"
)

// RuleFile pairs a loaded rule with its on-disk source.
type RuleFile struct {
	Rule gauntlet.HouseRule
	Path string
}

// LoadDir discovers YAML and Go rules in dir. Missing directories mean no
// rules. Rule names must be unique.
func LoadDir(dir string) ([]RuleFile, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	yamlRules, err := LoadYAMLDir(dir)
	if err != nil {
		return nil, err
	}
	goRules, err := LoadGoDir(dir)
	if err != nil {
		return nil, err
	}
	all := append(yamlRules, goRules...)
	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })
	seen := make(map[string]string, len(all))
	for _, file := range all {
		if existing, ok := seen[file.Rule.Name]; ok {
			return nil, fmt.Errorf("rules: duplicate rule name %s (%s and %s)", file.Rule.Name, existing, file.Path)
		}
		seen[file.Rule.Name] = file.Path
	}
	return all, nil
}

// HouseRules strips the source paths for the engine.
func HouseRules(files []RuleFile) []gauntlet.HouseRule {
	out := make([]gauntlet.HouseRule, len(files))
	for i, file := range files {
		out[i] = file.Rule
	}
	return out
}
