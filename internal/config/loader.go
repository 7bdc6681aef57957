package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceEnv     SourceKind = "env"
	SourceFile    SourceKind = "file"
)

// Source names where an effective value came from.
type Source struct {
	Kind   SourceKind
	Name   string // variable name for env, "defaults" otherwise
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config *Config
	// Sources maps a key path such as "wayland.decorations" to the layer
	// that set it last.
	Sources map[string]Source
	// Files lists the config file and its drop-ins in merge order.
	Files []string
}

const (
	// EnvConfig overrides the config file location.
	EnvConfig = "HATCH_CONFIG"
	// EnvPlatform overrides the platform key of every loaded file.
	EnvPlatform = "HATCH_PLATFORM"
	// EnvLogLevel overrides log_level.
	EnvLogLevel = "HATCH_LOG_LEVEL"

	// DropInDir is read next to the config file. Its *.yaml files are
	// merged over the main file in name order.
	DropInDir = "config.d"
)

var envOverrides = []struct {
	name string
	path string
	set  func(*RawConfig, string)
}{
	{EnvPlatform, "platform", func(r *RawConfig, v string) { r.Platform = &v }},
	{EnvLogLevel, "log_level", func(r *RawConfig, v string) { r.LogLevel = &v }},
}

func DefaultConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv(EnvConfig)); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "hatch", "config.yaml"), nil
}

// Load reads the configuration from the standard location and returns an
// effective config ready for Init.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath merges path, the drop-ins beside it and the environment
// over the defaults. Missing files are skipped.
func LoadFromPath(path string) (*LoadResult, error) {
	files, err := layerFiles(path)
	if err != nil {
		return nil, err
	}

	res := &LoadResult{Sources: map[string]Source{}, Files: files}
	raw := RawConfig{}
	for _, file := range files {
		layer, sources, err := readLayer(file)
		if err != nil {
			return nil, err
		}
		raw = raw.merge(layer)
		for key, src := range sources {
			res.Sources[key] = src
		}
	}

	for _, o := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(o.name)); v != "" {
			o.set(&raw, v)
			res.Sources[o.path] = Source{Kind: SourceEnv, Name: o.name}
		}
	}

	res.Config = BuildEffectiveConfig(raw)
	if err := res.Config.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Source = res.Sources[verr.Path]
		}
		return nil, err
	}
	return res, nil
}

// layerFiles returns path, if present, followed by its sorted drop-ins.
func layerFiles(path string) ([]string, error) {
	var files []string
	if _, err := os.Stat(path); err == nil {
		files = append(files, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	dir := filepath.Join(filepath.Dir(path), DropInDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	var dropIns []string
	for _, ent := range entries {
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if ent.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		dropIns = append(dropIns, filepath.Join(dir, ent.Name()))
	}
	slices.Sort(dropIns)
	return append(files, dropIns...), nil
}

// readLayer strictly decodes one file and records the position of every
// key it sets.
func readLayer(file string) (RawConfig, map[string]Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", file, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", file, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	return raw, keyPositions(&doc, file), nil
}

// keyPositions maps the top-level keys and the keys of each backend or
// window section to where their values start.
func keyPositions(doc *yaml.Node, file string) map[string]Source {
	out := map[string]Source{}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return out
	}
	root := doc.Content[0]
	at := func(n *yaml.Node) Source {
		return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
	}
	eachKey(root, func(key string, val *yaml.Node) {
		out[key] = at(val)
		eachKey(val, func(leaf string, v *yaml.Node) {
			out[key+"."+leaf] = at(v)
		})
	})
	return out
}

func eachKey(node *yaml.Node, fn func(string, *yaml.Node)) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		fn(node.Content[i].Value, node.Content[i+1])
	}
}
