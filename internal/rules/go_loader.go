package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/gauntlet/internal/gauntlet"
)

const goCheckFuncName = "Check"

// LoadGoDir interprets every .go file in dir. Each file must define
// Check(lines []string) []string; the rule is named after the file.
func LoadGoDir(dir string) ([]RuleFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("rules: read %s: %w", dir, err)
	}
	var files []RuleFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		file, err := loadGoFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func loadGoFile(path string) (RuleFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return RuleFile{}, fmt.Errorf("rules: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return RuleFile{}, fmt.Errorf("rules: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return RuleFile{}, fmt.Errorf("rules: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return RuleFile{}, fmt.Errorf("rules: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(goCheckFuncName)
	if err != nil {
		return RuleFile{}, fmt.Errorf("rules: %s must define %s(lines []string) []string: %w", path, goCheckFuncName, err)
	}
	check, err := wrapCheckFunc(fnValue)
	if err != nil {
		return RuleFile{}, fmt.Errorf("rules: %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return RuleFile{
		Rule: gauntlet.HouseRule{Name: name, Check: check},
		Path: filepath.Clean(path),
	}, nil
}

// wrapCheckFunc adapts the interpreted function. A panic inside the rule is
// reported as a warning instead of taking the validator down.
func wrapCheckFunc(value reflect.Value) (func([]string) []string, error) {
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goCheckFuncName)
	}
	if fn, ok := value.Interface().(func([]string) []string); ok {
		return guard(fn), nil
	}
	fnType := value.Type()
	if fnType.NumIn() != 1 || fnType.NumOut() != 1 {
		return nil, fmt.Errorf("%s must have signature func([]string) []string", goCheckFuncName)
	}
	return guard(func(lines []string) []string {
		out := value.Call([]reflect.Value{reflect.ValueOf(lines)})
		if len(out) != 1 || out[0].Kind() != reflect.Slice {
			return []string{fmt.Sprintf("%s returned %s, want []string", goCheckFuncName, out[0].Type())}
		}
		msgs := make([]string, out[0].Len())
		for i := range msgs {
			msgs[i] = fmt.Sprint(out[0].Index(i).Interface())
		}
		return msgs
	}), nil
}

func guard(fn func([]string) []string) func([]string) []string {
	return func(lines []string) (msgs []string) {
		defer func() {
			if r := recover(); r != nil {
				msgs = []string{fmt.Sprintf("rule panicked: %v", r)}
			}
		}()
		return fn(lines)
	}
}
