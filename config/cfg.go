package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	BookKeysConfig struct {
		Title    string `yaml:"title" validate:"required"`
		Chapters string `yaml:"chapters" validate:"required"`
		Prologue string `yaml:"prologue" validate:"required"`
		Epilogue string `yaml:"epilogue" validate:"required"`
	}

	ChapterKeysConfig struct {
		Outline  string `yaml:"outline" validate:"required"`
		Draft    string `yaml:"draft" validate:"required"`
		Final    string `yaml:"final" validate:"required"`
		Datetime string `yaml:"datetime" validate:"required"`
		Location string `yaml:"location" validate:"required"`
	}

	VaultConfig struct {
		Extensions []string          `yaml:"extensions" validate:"min=1,dive,required,startswith=."`
		Ignore     []string          `yaml:"ignore" validate:"dive,required"`
		Debounce   time.Duration     `yaml:"debounce" validate:"gte=0"`
		Book       BookKeysConfig    `yaml:"book"`
		Chapter    ChapterKeysConfig `yaml:"chapter"`
	}

	LabelsConfig struct {
		PrologueTemplate string `yaml:"prologue_template" validate:"required"`
		EpilogueTemplate string `yaml:"epilogue_template" validate:"required"`
		ChapterTemplate  string `yaml:"chapter_template" validate:"required"`
	}

	ToolbarConfig struct {
		FontSize          float64       `yaml:"font_size" validate:"gt=0"`
		DPI               float64       `yaml:"dpi" validate:"gt=0"`
		ButtonPadding     float64       `yaml:"button_padding" validate:"gte=0"`
		OverflowLabel     string        `yaml:"overflow_label" validate:"required"`
		SafetyBuffer      float64       `yaml:"safety_buffer" validate:"gte=0"`
		MinPlausibleWidth float64       `yaml:"min_plausible_width" validate:"gte=0"`
		RetryDelay        time.Duration `yaml:"retry_delay" validate:"gt=0"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Vault     VaultConfig    `yaml:"vault"`
		Labels    LabelsConfig   `yaml:"labels"`
		Toolbar   ToolbarConfig  `yaml:"toolbar"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field names above, label templates are expanded
	// per chapter by the index builder and must survive configuration processing
	PrologueTemplateFieldName TemplateFieldName = "prologue_template"
	EpilogueTemplateFieldName TemplateFieldName = "epilogue_template"
	ChapterTemplateFieldName  TemplateFieldName = "chapter_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(PrologueTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(EpilogueTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(ChapterTemplateFieldName)),
)

// checkLabels makes sure label templates could be parsed before any index is built.
func checkLabels(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	for name, field := range map[TemplateFieldName]string{
		PrologueTemplateFieldName: cfg.Labels.PrologueTemplate,
		EpilogueTemplateFieldName: cfg.Labels.EpilogueTemplate,
		ChapterTemplateFieldName:  cfg.Labels.ChapterTemplate,
	} {
		if _, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field); err != nil {
			sl.ReportError(field, string(name), string(name), "template", err.Error())
		}
	}
}

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
			return nil, fmt.Errorf("configuration sanitizing failed: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkLabels)); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
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
