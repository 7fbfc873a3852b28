package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/tokenize"
)

// Definition is the YAML form of a house rule.
type Definition struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description,omitempty"`
	Forbid        []string `yaml:"forbid,omitempty"`
	Require       []string `yaml:"require,omitempty"`
	MaxLineLength int      `yaml:"max_line_length,omitempty"`
}

// Validate checks that the definition names itself and constrains something.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("rules: name is required")
	}
	if len(d.Forbid) == 0 && len(d.Require) == 0 && d.MaxLineLength <= 0 {
		return fmt.Errorf("rules: %s has no forbid, require or max_line_length", d.Name)
	}
	if d.MaxLineLength < 0 {
		return fmt.Errorf("rules: %s max_line_length must be positive", d.Name)
	}
	return nil
}

// Normalized lowercases word lists and trims the name.
func (d Definition) Normalized() Definition {
	out := d
	out.Name = strings.TrimSpace(d.Name)
	out.Forbid = lowerAll(d.Forbid)
	out.Require = lowerAll(d.Require)
	return out
}

// Check applies the definition to a poem.
func (d Definition) Check(poem []string) []string {
	var problems []string
	forbidden := make(map[string]bool, len(d.Forbid))
	for _, w := range d.Forbid {
		forbidden[w] = true
	}
	present := make(map[string]bool)
	for i, line := range poem {
		for _, tok := range tokenize.Words(line) {
			present[tok] = true
			if forbidden[tok] {
				problems = append(problems, fmt.Sprintf("forbidden word %q on L%d", tok, i+1))
			}
		}
		if d.MaxLineLength > 0 {
			if n := utf8.RuneCountInString(strings.TrimSpace(line)); n > d.MaxLineLength {
				problems = append(problems, fmt.Sprintf("L%d is %d characters (max %d)", i+1, n, d.MaxLineLength))
			}
		}
	}
	for _, w := range d.Require {
		if !present[w] {
			problems = append(problems, fmt.Sprintf("required word %q missing", w))
		}
	}
	return problems
}

// ParseDefinitionYAML decodes and validates a single rule payload.
func ParseDefinitionYAML(data []byte) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, fmt.Errorf("rules: definition payload is empty")
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("rules: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def.Normalized(), nil
}

// LoadYAMLDir parses every *.yaml / *.yml file in dir.
func LoadYAMLDir(dir string) ([]RuleFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("rules: read %s: %w", dir, err)
	}
	var files []RuleFile
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("rules: read %s: %w", path, err)
		}
		def, err := ParseDefinitionYAML(data)
		if err != nil {
			return nil, fmt.Errorf("rules: %s: %w", path, err)
		}
		files = append(files, RuleFile{
			Rule: gauntlet.HouseRule{Name: def.Name, Check: def.Check},
			Path: filepath.Clean(path),
		})
	}
	return files, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
