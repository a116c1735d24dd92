package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// LayoutConfig is the formatting request for one run. It is never
	// modified once loaded and command line overrides applied.
	LayoutConfig struct {
		Style               Style  `yaml:"style" validate:"oneof=0 1 2"`
		MeasuresPerLine     int    `yaml:"measures_per_line" validate:"min=1,max=32"`
		MeasuresPerLinePart int    `yaml:"measures_per_line_part" validate:"min=0,max=32"`
		LinesFirstPage      int    `yaml:"lines_first_page" validate:"min=1,max=32"`
		LinesPerPage        int    `yaml:"lines_per_page" validate:"min=1,max=32"`
		PageBreaks          bool   `yaml:"page_breaks"`
		ShowTitle           string `yaml:"show_title"`
		ShowNumber          string `yaml:"show_number"`
		PartName            string `yaml:"part_name" validate:"required"`
		Composer            string `yaml:"composer"`
		Arranger            string `yaml:"arranger"`
		Version             string `yaml:"version"`
		StylesDir           string `yaml:"styles_dir,omitempty" sanitize:"path_clean" validate:"omitempty,dir"`
	}

	OutputConfig struct {
		NameTemplate          string `yaml:"name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Layout    LayoutConfig   `yaml:"layout"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// PartMeasuresPerLine returns measures per line to use for excerpts.
func (l *LayoutConfig) PartMeasuresPerLine() int {
	if l.MeasuresPerLinePart > 0 {
		return l.MeasuresPerLinePart
	}
	return l.MeasuresPerLine
}

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "name_template"

	badFileName = "_bad_file_name_"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
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

// Validate re-checks configuration after command line overrides were applied.
func (c *Config) Validate() error {
	return gencfg.Validate(c)
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
