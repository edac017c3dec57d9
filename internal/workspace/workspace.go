package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// OutputPrefix is prepended to the input's base name to form the report file name.
const OutputPrefix = "extracted_"

// Workspace is the pair of directories the tool reads inputs from and writes reports to.
type Workspace struct {
	InputsDir  string
	OutputsDir string
}

// New returns a workspace rooted at the given directories. Empty values default to
// "inputs" and "outputs" relative to the working directory.
func New(inputs, outputs string) *Workspace {
	if inputs == "" {
		inputs = "inputs"
	}
	if outputs == "" {
		outputs = "outputs"
	}
	return &Workspace{InputsDir: inputs, OutputsDir: outputs}
}

// ListInputs returns the non-hidden regular files in the inputs directory, sorted by name.
// A missing inputs directory yields an empty list.
func (w *Workspace) ListInputs() ([]string, error) {
	entries, err := os.ReadDir(w.InputsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inputs dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// ResolveInput returns arg when it names an existing file, otherwise the same name
// inside the inputs directory when that exists.
func (w *Workspace) ResolveInput(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	if !filepath.IsAbs(arg) {
		cand := filepath.Join(w.InputsDir, arg)
		if _, err := os.Stat(cand); err == nil {
			return cand, nil
		}
	}
	return "", fmt.Errorf("input not found: %s", arg)
}

// OutputPath is outputs/extracted_<base name without extension>.txt.
func (w *Workspace) OutputPath(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.OutputsDir, OutputPrefix+base+".txt")
}

// WriteReport writes one newline-terminated line per entry to path, creating the
// parent directory.
func WriteReport(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return SafeWriteFile(path, []byte(b.String()))
}

// SafeWriteFile writes data to a uniquely named temp file next to path and
// atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
