package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fieldscan/internal/config"
	"github.com/KaramelBytes/fieldscan/internal/logging"
	"github.com/KaramelBytes/fieldscan/internal/schema"
	"github.com/KaramelBytes/fieldscan/internal/workspace"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Classifier flags (override config if set)
	flagGranularity string
	flagSeed        int64
	flagMaxDepth    int
	flagNoDual      bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// Replaced in loadConfig; discards until then
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "fieldscan",
	Short: "fieldscan: infer the field schema of data files",
	Long: `fieldscan reads tabular (CSV, XLSX, SQLite, HTML tables) and semi-structured
(JSON, NDJSON, XML, YAML) files and reports every field as "path;type;example".`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.fieldscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagGranularity, "granularity", "", "numeric granularity: coarse | fine (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "seed for example sampling; 0 = random (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagMaxDepth, "max-depth", 0, "maximum nesting depth for semi-structured input (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoDual, "no-dual", false, "disable numeric/date dual detection")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so one-off runs still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		if c, err = cfgpkg.Load(""); err != nil {
			c = &cfgpkg.Global{NumericGranularity: "coarse", DualDetection: true, MaxDepth: schema.DefaultMaxDepth, LogLevel: "info", LogFormat: "text"}
		}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("granularity") {
		cfg.NumericGranularity = flagGranularity
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("max-depth") && flagMaxDepth > 0 {
		cfg.MaxDepth = flagMaxDepth
	}
	if f.Changed("no-dual") && flagNoDual {
		cfg.DualDetection = false
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	l, err := logging.New(&logging.Config{Level: cfg.LogLevel, Format: logging.LogFormat(cfg.LogFormat)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using default logger\n", err)
		l, _ = logging.New(nil)
	}
	logger = l
	logger.WithFields(logrus.Fields{
		"config":      cfgFile,
		"granularity": cfg.NumericGranularity,
		"dual":        cfg.DualDetection,
		"max_depth":   cfg.MaxDepth,
	}).Debug("configuration loaded")
}

// currentWorkspace builds the workspace from the loaded configuration.
func currentWorkspace() *workspace.Workspace {
	if cfg == nil {
		return workspace.New("", "")
	}
	return workspace.New(cfg.InputsDir, cfg.OutputsDir)
}

// schemaOptions builds classifier options from config, with dateFormats (strftime
// patterns) replacing the configured formats when non-empty.
func schemaOptions(dateFormats []string) (schema.Options, error) {
	c := cfg
	if c == nil {
		var err error
		if c, err = cfgpkg.Load(cfgFile); err != nil {
			return schema.Options{}, err
		}
	}
	cc := *c
	if len(dateFormats) > 0 {
		cc.DateFormats = dateFormats
	}
	if err := cc.Validate(); err != nil {
		return schema.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cc.SchemaOptions()
}
