package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/fieldscan/internal/loader"
	"github.com/KaramelBytes/fieldscan/internal/schema"
)

// resetFlags restores every flag of c and its subcommands to its default, since
// flag state sticks to the package-level commands between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(fl *pflag.Flag) {
			if sv, ok := fl.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = fl.Value.Set(fl.DefValue)
			}
			fl.Changed = false
		})
	}
	reset(c.Flags())
	reset(c.PersistentFlags())
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and stdin, returning what it printed.
func execCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args; it fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// sandbox isolates HOME and points the workspace at fresh temp directories.
func sandbox(t *testing.T) (inputs, outputs string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	inputs = filepath.Join(home, "inputs")
	outputs = filepath.Join(home, "outputs")
	require.NoError(t, os.MkdirAll(inputs, 0o755))
	t.Setenv("FIELDSCAN_INPUTS_DIR", inputs)
	t.Setenv("FIELDSCAN_OUTPUTS_DIR", outputs)
	return inputs, outputs
}

func put(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func readReport(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

func TestAnalyze_CSVWritesReport(t *testing.T) {
	inputs, outputs := sandbox(t)
	put(t, inputs, "people.csv", "id,active,joined,name\n7,true,2024-01-02,Ann\n")

	out := runCmd(t, "analyze", "people.csv")
	want := []string{
		"id;Numeric;7",
		"active;Boolean;true",
		"joined;Date/Time;2024-01-02 00:00:00",
		"name;String;Ann",
	}
	assert.Contains(t, out, "✅ Fields detected:\n"+strings.Join(want, "\n")+"\n")
	report := filepath.Join(outputs, "extracted_people.txt")
	assert.Contains(t, out, "✅ Output saved to: "+report)
	assert.Equal(t, want, readReport(t, report))
}

func TestAnalyze_FlagsOverrideConfig(t *testing.T) {
	inputs, outputs := sandbox(t)
	p := put(t, inputs, "stamps.csv", "day,n\n01.02.2024,3\n")

	out := runCmd(t, "analyze", p, "--no-write", "--granularity", "fine", "--date-format", "%d.%m.%Y")
	assert.Contains(t, out, "day;Date/Time;2024-02-01 00:00:00\n")
	assert.Contains(t, out, "n;Integer;3\n")
	_, err := os.Stat(filepath.Join(outputs, "extracted_stamps.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "--no-write must not create a report")

	custom := filepath.Join(t.TempDir(), "r.txt")
	runCmd(t, "analyze", p, "-o", custom)
	assert.Equal(t, []string{"day;String;01.02.2024", "n;Numeric;3"}, readReport(t, custom))
}

func TestAnalyze_DualColumn(t *testing.T) {
	inputs, _ := sandbox(t)
	put(t, inputs, "ids.csv", "code\n20240115\n")
	out := runCmd(t, "analyze", "ids.csv", "--no-write", "--date-format", "%Y%m%d")
	assert.Contains(t, out, "code;Numeric;20240115\ncode_DualText;String;20240115\n")

	out = runCmd(t, "analyze", "ids.csv", "--no-write", "--date-format", "%Y%m%d", "--no-dual")
	assert.NotContains(t, out, "_DualText")
}

func TestAnalyze_Nested(t *testing.T) {
	inputs, outputs := sandbox(t)
	put(t, inputs, "order.json", `{"id": 1, "customer": {"name": "Ann", "vip": false}, "items": [{"sku": "A1"}]}`)
	runCmd(t, "analyze", "order.json")
	assert.Equal(t, []string{
		"id;Numeric;1",
		"customer.name;String;Ann",
		"customer.vip;Boolean;false",
		"items[0].sku;String;A1",
	}, readReport(t, filepath.Join(outputs, "extracted_order.txt")))
}

func TestAnalyze_DepthLimit(t *testing.T) {
	inputs, outputs := sandbox(t)
	put(t, inputs, "deep.json", `{"a": {"b": {"c": 1}}}`)
	_, err := execCmd(t, "", "analyze", "deep.json", "--max-depth", "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrDepthExceeded)
	_, statErr := os.Stat(filepath.Join(outputs, "extracted_deep.txt"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	runCmd(t, "analyze", "deep.json", "--max-depth", "3")
}

func TestAnalyze_Errors(t *testing.T) {
	inputs, outputs := sandbox(t)
	put(t, inputs, "data.parquet", "PAR1")
	_, err := execCmd(t, "", "analyze", "data.parquet")
	assert.True(t, errors.Is(err, loader.ErrUnsupported))

	_, err = execCmd(t, "", "analyze", "missing.csv")
	assert.Error(t, err)

	put(t, inputs, "x.csv", "a\n1\n")
	_, err = execCmd(t, "", "analyze", "x.csv", "--delimiter", "#")
	assert.Error(t, err)

	entries, _ := os.ReadDir(outputs)
	assert.Empty(t, entries)
}

func TestAnalyze_UnpaddedUSDates(t *testing.T) {
	inputs, _ := sandbox(t)
	put(t, inputs, "dates.csv", "due\n1/5/2024\n12/31/2024\n")
	out := runCmd(t, "--seed", "1", "analyze", "dates.csv", "--no-write")
	assert.Regexp(t, `due;Date/Time;2024-(01-05|12-31) 00:00:00\n`, out)
}

func TestList(t *testing.T) {
	inputs, _ := sandbox(t)
	out := runCmd(t, "list")
	assert.Contains(t, out, "(no files in")

	put(t, inputs, "b.json", "{}")
	put(t, inputs, "a.csv", "x\n1\n")
	put(t, inputs, "notes.txt", "hi")
	put(t, inputs, ".hidden.csv", "x\n")
	out = runCmd(t, "list")
	assert.Equal(t, "1. a.csv\n2. b.json\n", out)

	out = runCmd(t, "list", "--all")
	assert.Equal(t, "1. a.csv\n2. b.json\n3. notes.txt\n", out)
}

func TestInteractive(t *testing.T) {
	inputs, outputs := sandbox(t)
	put(t, inputs, "a.csv", "x\n1\n")
	put(t, inputs, "b.yaml", "k: v\n")

	out, err := execCmd(t, "9\nabc\n2\ny\n1\nn\n", "interactive")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "❌ Invalid choice. Please try again."))
	assert.Contains(t, out, "1. a.csv\n2. b.yaml\n")
	assert.Contains(t, out, "k;String;v\n")
	assert.Contains(t, out, "x;Numeric;1\n")
	assert.Contains(t, out, "Do you want to analyze another file? (y/n): ")
	assert.True(t, strings.HasSuffix(out, "✅ Goodbye ! 👋\n"))
	assert.FileExists(t, filepath.Join(outputs, "extracted_a.txt"))
	assert.FileExists(t, filepath.Join(outputs, "extracted_b.txt"))
}

func TestInteractive_QuitAndEmpty(t *testing.T) {
	inputs, _ := sandbox(t)
	out, err := execCmd(t, "", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "No files found")

	put(t, inputs, "a.csv", "x\n1\n")
	out, err = execCmd(t, "Q\n", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Goodbye ! 👋")
	assert.NotContains(t, out, "Fields detected")
}

func TestInteractive_BadFileKeepsLooping(t *testing.T) {
	inputs, _ := sandbox(t)
	put(t, inputs, "bad.json", `{"a": `)
	put(t, inputs, "ok.csv", "x\n1\n")
	out, err := execCmd(t, "1\ny\n2\nn\n", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "❌ Could not process file")
	assert.Contains(t, out, "x;Numeric;1\n")
}

func TestConfigSetShow(t *testing.T) {
	sandbox(t)
	path := filepath.Join(t.TempDir(), "fieldscan.yaml")
	runCmd(t, "--config", path, "config", "set", "numeric_granularity", "fine")
	runCmd(t, "--config", path, "config", "set", "boolean_true", "yes, y")
	runCmd(t, "--config", path, "config", "set", "boolean_false", "no,n")

	out := runCmd(t, "--config", path, "config", "show")
	assert.Contains(t, out, "numeric_granularity: fine\n")
	assert.Contains(t, out, "boolean_true: yes, y\n")
	assert.Contains(t, out, "boolean_false: no, n\n")

	_, err := execCmd(t, "", "--config", path, "config", "set", "numeric_granularity", "medium")
	assert.Error(t, err)
	_, err = execCmd(t, "", "--config", path, "config", "set", "colour", "blue")
	assert.Error(t, err)
	_, err = execCmd(t, "", "--config", path, "config", "set", "log_format", "xml")
	assert.Error(t, err)
}

func TestConfigTokensApplyToAnalysis(t *testing.T) {
	inputs, _ := sandbox(t)
	path := filepath.Join(t.TempDir(), "fieldscan.yaml")
	runCmd(t, "--config", path, "config", "set", "boolean_true", "yes")
	runCmd(t, "--config", path, "config", "set", "boolean_false", "no")
	put(t, inputs, "flags.csv", "ok\nyes\nno\n")

	out := runCmd(t, "--config", path, "--seed", "3", "analyze", "flags.csv", "--no-write")
	assert.Regexp(t, `ok;Boolean;(true|false)\n`, out)
}
