package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"cssdedup/dedup"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	SelectorConfig struct {
		Kind  SelectorKind `yaml:"kind" validate:"gte=0,lte=2"`
		Value string       `yaml:"value" validate:"required_unless=Kind 0"`
	}

	TransformConfig struct {
		Selector      SelectorConfig `yaml:"selector"`
		PreserveEmpty bool           `yaml:"preserve_empty"`
	}

	OutputConfig struct {
		SkipUnchanged bool        `yaml:"skip_unchanged"`
		Archive       ArchiveMode `yaml:"archive" validate:"gte=0,lte=1"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Transform TransformConfig `yaml:"transform"`
		Output    OutputConfig    `yaml:"output"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

// Matcher converts selector configuration into rule matcher.
func (conf *SelectorConfig) Matcher() (dedup.Matcher, error) {
	switch conf.Kind {
	case SelectorKindSubstring:
		return dedup.MatchSubstring(conf.Value), nil
	case SelectorKindRegexp:
		p, err := dedup.CompilePattern(conf.Value)
		if err != nil {
			return dedup.MatchAll(), err
		}
		return dedup.MatchPattern(p), nil
	default:
		return dedup.MatchAll(), nil
	}
}

// Options converts transform configuration into transform options.
func (conf *TransformConfig) Options() (dedup.Options, error) {
	m, err := conf.Selector.Matcher()
	if err != nil {
		return dedup.Options{}, err
	}
	return dedup.Options{Selector: m, PreserveEmpty: conf.PreserveEmpty}, nil
}

// checkSelectorPattern makes sure configured pattern compiles, so bad
// expression is reported when configuration is loaded.
func checkSelectorPattern(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok || cfg.Transform.Selector.Kind != SelectorKindRegexp {
		return
	}
	if _, err := cfg.Transform.Selector.Matcher(); err != nil {
		sl.ReportError(cfg.Transform.Selector.Value, "Transform.Selector.Value", "Value", "regexp", "")
	}
}

const (
	// NOTE: must match yaml field name above, selector patterns may contain
	// braces and must not be treated as templates
	SelectorValueFieldName = "value"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(SelectorValueFieldName),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkSelectorPattern)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
