package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/fieldscan/internal/loader"
	"github.com/KaramelBytes/fieldscan/internal/schema"
	"github.com/KaramelBytes/fieldscan/internal/workspace"
)

// inputFlags are the reader options shared by analyze and analyze-batch.
type inputFlags struct {
	delimiter   string
	encoding    string
	sheetName   string
	sheetIndex  int
	table       string
	maxRows     int
	dateFormats []string
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (sniffed if omitted)")
	fs.StringVar(&f.encoding, "encoding", "", "CSV text encoding: utf-8 | latin1 | windows-1252 | utf-16")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fs.IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.StringVar(&f.table, "table", "", "SQLite: table to analyze (first table if omitted)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
	fs.StringArrayVar(&f.dateFormats, "date-format", nil, "strftime date format, e.g. '%d.%m.%Y' (repeatable, replaces configured formats)")
}

func (f *inputFlags) loaderOptions() (loader.Options, error) {
	opt := loader.Options{
		Encoding:   f.encoding,
		SheetName:  f.sheetName,
		SheetIndex: f.sheetIndex,
		Table:      f.table,
		MaxRows:    f.maxRows,
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	if f.maxRows < 0 {
		return opt, fmt.Errorf("--max-rows must not be negative")
	}
	return opt, nil
}

var (
	anaFlags   inputFlags
	anaOutput  string
	anaNoWrite bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Detect the fields of one file and write the report",
	Long: `Detect every field of a data file and print one "path;type;example" line per field.
The report is also written to <outputs_dir>/extracted_<name>.txt unless --no-write is set.
A bare file name is looked up in the inputs directory when it does not exist as given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lopt, err := anaFlags.loaderOptions()
		if err != nil {
			return err
		}
		sopt, err := schemaOptions(anaFlags.dateFormats)
		if err != nil {
			return err
		}
		ws := currentWorkspace()
		path, err := ws.ResolveInput(args[0])
		if err != nil {
			return err
		}
		out := anaOutput
		if out == "" {
			out = ws.OutputPath(path)
		}
		if anaNoWrite {
			out = ""
		}
		_, err = analyzeFile(cmd.OutOrStdout(), path, lopt, sopt, out, true)
		return err
	},
}

// analyzeFile loads path, infers its fields, and writes the report to outPath when
// it is non-empty. With show set, the field lines are printed to w. Nothing is
// written when any step fails.
func analyzeFile(w io.Writer, path string, lopt loader.Options, sopt schema.Options, outPath string, show bool) (*schema.Report, error) {
	start := time.Now()
	entry := logger.WithField("file", path)

	if lopt.MaxDepth == 0 {
		lopt.MaxDepth = sopt.MaxDepth
	}
	in, err := loader.LoadFile(path, lopt)
	if err != nil {
		return nil, err
	}
	entry = entry.WithFields(logrus.Fields{"format": in.Format, "kind": in.Kind})
	entry.Debug("input loaded")

	rep, err := schema.Build(in.Value(), sopt)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	lines := rep.Lines()
	if show {
		fmt.Fprintln(w, "✅ Fields detected:")
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}
	if outPath != "" {
		if err := workspace.WriteReport(outPath, lines); err != nil {
			return nil, err
		}
		if show {
			fmt.Fprintf(w, "✅ Output saved to: %s\n", outPath)
		}
	}
	entry.WithFields(logrus.Fields{
		"fields":  len(rep.Records),
		"output":  outPath,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("analysis complete")
	return rep, nil
}

// describeKinds summarizes record types for batch progress output, e.g. "3 Numeric, 1 String".
func describeKinds(rep *schema.Report) string {
	counts := map[string]int{}
	var order []string
	for _, r := range rep.Records {
		label := r.Type.String()
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	parts := make([]string, len(order))
	for i, l := range order {
		parts[i] = fmt.Sprintf("%d %s", counts[l], l)
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&anaOutput, "output", "o", "", "path to write the report (default <outputs_dir>/extracted_<name>.txt)")
	analyzeCmd.Flags().BoolVar(&anaNoWrite, "no-write", false, "print the report without writing a file")
}
