package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fieldscan/internal/config"
	"github.com/KaramelBytes/fieldscan/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set fieldscan configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded")
			return nil
		}
		fmt.Fprintf(w, "numeric_granularity: %s\n", cfg.NumericGranularity)
		fmt.Fprintf(w, "dual_detection: %t\n", cfg.DualDetection)
		fmt.Fprintf(w, "date_formats: %s\n", strings.Join(cfg.DateFormats, ", "))
		fmt.Fprintf(w, "boolean_true: %s\n", strings.Join(cfg.BooleanTrue, ", "))
		fmt.Fprintf(w, "boolean_false: %s\n", strings.Join(cfg.BooleanFalse, ", "))
		fmt.Fprintf(w, "max_depth: %d\n", cfg.MaxDepth)
		if cfg.Seed != 0 {
			fmt.Fprintf(w, "seed: %d\n", cfg.Seed)
		}
		fmt.Fprintf(w, "inputs_dir: %s\n", cfg.InputsDir)
		fmt.Fprintf(w, "outputs_dir: %s\n", cfg.OutputsDir)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk. List keys (date_formats, boolean_true,
boolean_false) take comma-separated values.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file contents, not the flag-adjusted effective config.
		// A --config path that does not exist yet is created from defaults.
		src := cfgFile
		if _, err := os.Stat(src); src != "" && errors.Is(err, fs.ErrNotExist) {
			src = ""
		}
		c, err := cfgpkg.Load(src)
		if err != nil {
			return err
		}
		switch key {
		case "numeric_granularity":
			c.NumericGranularity = strings.ToLower(strings.TrimSpace(val))
		case "dual_detection":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for dual_detection: %v", val)
			}
			c.DualDetection = b
		case "date_formats":
			c.DateFormats = splitList(val)
		case "boolean_true":
			c.BooleanTrue = splitList(val)
		case "boolean_false":
			c.BooleanFalse = splitList(val)
		case "max_depth":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_depth: %v", val)
			}
			c.MaxDepth = i
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			c.Seed = i
		case "inputs_dir":
			c.InputsDir = val
		case "outputs_dir":
			c.OutputsDir = val
		case "log_level":
			c.LogLevel = strings.ToLower(val)
		case "log_format":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		lc := logging.Config{Level: c.LogLevel, Format: logging.LogFormat(c.LogFormat)}
		if err := lc.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
