package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
	"github.com/dnswlt/mdcat/internal/repo"
	"github.com/dnswlt/mdcat/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRecordsDir = "records"
	DefaultCacheSize  = 256
)

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Pretty bool   `yaml:"pretty"` // human readable console output instead of JSON
}

// CatalogConfig configures where records are read from.
type CatalogConfig struct {
	// Directory holding the record YAML files, relative to the store root.
	RecordsDir string `yaml:"recordsDir"`
	// Number of files kept in the store's read cache.
	CacheSize int `yaml:"cacheSize"`
	// File that newly created records are written to. If empty, changes
	// are kept in memory only.
	WritePath string `yaml:"writePath"`
	// Rules that every loaded or written record must satisfy.
	Validation *repo.ValidationRules `yaml:"validation,omitempty"`
}

// ConvertConfig configures the bean converters.
type ConvertConfig struct {
	ServiceName string `yaml:"serviceName"`
	// Additional property names accepted for a field, keyed by the field's
	// canonical property name.
	FieldAliases map[string][]string `yaml:"fieldAliases"`
}

// Bundle is the umbrella struct for the serialized application configuration YAML.
type Bundle struct {
	Log     LogConfig     `yaml:"log"`
	Catalog CatalogConfig `yaml:"catalog"`
	Convert ConvertConfig `yaml:"convert"`
}

// Default returns the configuration used when no config file is given.
func Default() *Bundle {
	b := &Bundle{}
	b.setDefaults()
	return b
}

func (b *Bundle) setDefaults() {
	if b.Log.Level == "" {
		b.Log.Level = "info"
	}
	if b.Catalog.RecordsDir == "" {
		b.Catalog.RecordsDir = DefaultRecordsDir
	}
	if b.Catalog.CacheSize == 0 {
		b.Catalog.CacheSize = DefaultCacheSize
	}
}

func (b *Bundle) validate() error {
	if b.Catalog.CacheSize < 0 {
		return fmt.Errorf("catalog.cacheSize must not be negative: %d", b.Catalog.CacheSize)
	}
	for key, aliases := range b.Convert.FieldAliases {
		if _, ok := props.Lookup(key); !ok {
			return fmt.Errorf("convert.fieldAliases: unknown field %q", key)
		}
		for _, a := range aliases {
			if !catalog.IsValidPropertyName(a) {
				return fmt.Errorf("convert.fieldAliases: invalid alias %q for field %q", a, key)
			}
		}
	}
	return nil
}

// Parse decodes a configuration from r. Unknown fields are rejected.
// An empty document yields the defaults.
func Parse(r io.Reader) (*Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var bundle Bundle
	if err := dec.Decode(&bundle); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	bundle.setDefaults()
	if err := bundle.validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func Load(st store.Store, configPath string) (*Bundle, error) {
	bs, err := st.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %v", configPath, err)
	}
	bundle, err := Parse(bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration YAML in %q: %v", configPath, err)
	}
	return bundle, nil
}
