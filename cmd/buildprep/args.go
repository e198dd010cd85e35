package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aottr/buildprep/internal/gnargs"
)

// loadArgsFile reads extra generator arguments from a YAML mapping.
func loadArgsFile(path string) (gnargs.Map, error) {
	if path == "" {
		return gnargs.Map{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %v", err)
	}
	return gnargs.MapFromAny(raw)
}

// parseArgs turns KEY=VALUE flags into arguments. VALUE is read as YAML so
// numbers, booleans and [lists] keep their type.
func parseArgs(pairs []string) (gnargs.Map, error) {
	out := gnargs.Map{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, want KEY=VALUE", pair)
		}
		if strings.TrimSpace(value) == "" {
			out[key] = gnargs.String("")
			continue
		}
		var raw any
		if err := yaml.Unmarshal([]byte(value), &raw); err != nil {
			return nil, fmt.Errorf("argument %s: %v", key, err)
		}
		v, err := gnargs.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
