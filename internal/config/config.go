package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncruces/go-strftime"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

// DefaultDateFormats mirrors schema.DefaultDateLayouts in strftime notation.
var DefaultDateFormats = []string{"%Y-%m-%d", "%Y/%m/%d", "%Y-%m-%d %H:%M:%S", "%m/%d/%Y"}

// Global configuration structure.
type Global struct {
	// Classifier
	NumericGranularity string   `mapstructure:"numeric_granularity" yaml:"numeric_granularity"`
	DualDetection      bool     `mapstructure:"dual_detection" yaml:"dual_detection"`
	DateFormats        []string `mapstructure:"date_formats" yaml:"date_formats"`
	BooleanTrue        []string `mapstructure:"boolean_true" yaml:"boolean_true"`
	BooleanFalse       []string `mapstructure:"boolean_false" yaml:"boolean_false"`
	MaxDepth           int      `mapstructure:"max_depth" yaml:"max_depth"`
	// Seed fixes example sampling; 0 picks a new random example on every run.
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// Workspace
	InputsDir  string `mapstructure:"inputs_dir" yaml:"inputs_dir"`
	OutputsDir string `mapstructure:"outputs_dir" yaml:"outputs_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// defaultDir is ~/.fieldscan.
func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fieldscan"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fieldscan/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command-line flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FIELDSCAN")
	v.AutomaticEnv()

	v.SetDefault("numeric_granularity", "coarse")
	v.SetDefault("dual_detection", true)
	v.SetDefault("date_formats", DefaultDateFormats)
	v.SetDefault("boolean_true", []string{"true", "1"})
	v.SetDefault("boolean_false", []string{"false", "0"})
	v.SetDefault("max_depth", schema.DefaultMaxDepth)
	v.SetDefault("seed", 0)
	v.SetDefault("inputs_dir", "inputs")
	v.SetDefault("outputs_dir", "outputs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil && cfgFile != "" {
		return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// CompileDateFormats converts strftime patterns (e.g. "%Y-%m-%d") into Go time layouts,
// keeping their order.
func CompileDateFormats(formats []string) ([]string, error) {
	layouts := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		l, err := strftime.Layout(unpadded(f))
		if err != nil {
			return nil, fmt.Errorf("date format %q: %w", f, err)
		}
		layouts = append(layouts, l)
	}
	return layouts, nil
}

// unpadded adds the "-" flag to %m, %d, %I, %M and %S so the compiled layout accepts
// both "1/5/2024" and "01/05/2024". %H already compiles to a layout that accepts both.
func unpadded(f string) string {
	var b strings.Builder
	for i := 0; i < len(f); i++ {
		b.WriteByte(f[i])
		if f[i] != '%' || i+1 >= len(f) {
			continue
		}
		switch f[i+1] {
		case 'm', 'd', 'I', 'M', 'S':
			b.WriteByte('-')
		case '%':
			b.WriteByte('%')
			i++
		}
	}
	return b.String()
}

// SchemaOptions builds classifier options from the configuration. Sampling is left
// to the caller except for a non-zero seed.
func (c *Global) SchemaOptions() (schema.Options, error) {
	opt := schema.DefaultOptions()
	g, err := schema.ParseGranularity(c.NumericGranularity)
	if err != nil {
		return opt, err
	}
	opt.Granularity = g
	opt.DualDetection = c.DualDetection
	if len(c.DateFormats) > 0 {
		layouts, err := CompileDateFormats(c.DateFormats)
		if err != nil {
			return opt, err
		}
		opt.DateLayouts = layouts
	}
	if len(c.BooleanTrue) > 0 || len(c.BooleanFalse) > 0 {
		opt.TrueTokens = append([]string(nil), c.BooleanTrue...)
		opt.FalseTokens = append([]string(nil), c.BooleanFalse...)
	}
	if c.MaxDepth > 0 {
		opt.MaxDepth = c.MaxDepth
	}
	if c.Seed != 0 {
		opt.Sampler = schema.NewRandomSampler(c.Seed)
	}
	return opt, nil
}

// Validate checks enumerated settings.
func (c *Global) Validate() error {
	if _, err := schema.ParseGranularity(c.NumericGranularity); err != nil {
		return err
	}
	if _, err := CompileDateFormats(c.DateFormats); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	for _, t := range c.BooleanTrue {
		for _, f := range c.BooleanFalse {
			if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(f)) {
				return fmt.Errorf("boolean token %q is both true and false", t)
			}
		}
	}
	return nil
}
