package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var (
	abFlags   inputFlags
	abOutDir  string
	abNoWrite bool
	abQuiet   bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files or globs...>",
	Short: "Detect the fields of several files with progress output",
	Long: `Analyze every file matching the given paths or glob patterns, in sorted order.
Each file gets its own report; the first failing file stops the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := currentWorkspace()
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path or a name in the inputs directory
				if p, err := ws.ResolveInput(arg); err == nil {
					matches = []string{p}
				}
			}
			for _, m := range matches {
				if fi, err := os.Stat(m); err != nil || fi.IsDir() {
					continue
				}
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		lopt, err := abFlags.loaderOptions()
		if err != nil {
			return err
		}
		sopt, err := schemaOptions(abFlags.dateFormats)
		if err != nil {
			return err
		}
		if abOutDir != "" {
			ws.OutputsDir = abOutDir
		}

		outputs := make([]string, len(files))
		if !abNoWrite {
			owner := make(map[string]string, len(files))
			for i, path := range files {
				out := ws.OutputPath(path)
				if prev, ok := owner[out]; ok {
					return fmt.Errorf("%s and %s would both write %s", prev, path, out)
				}
				owner[out] = path
				outputs[i] = out
			}
		}

		w := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(w, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			out := outputs[i]
			rep, err := analyzeFile(w, path, lopt, sopt, out, false)
			if err != nil {
				return err
			}
			if !abQuiet {
				fmt.Fprintf(w, "✓ %d fields (%s)", len(rep.Records), describeKinds(rep))
				if out != "" {
					fmt.Fprintf(w, " -> %s", out)
				}
				fmt.Fprintln(w)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for reports (default outputs_dir)")
	analyzeBatchCmd.Flags().BoolVar(&abNoWrite, "no-write", false, "analyze without writing report files")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
