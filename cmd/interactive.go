package cmd

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/fieldscan/internal/loader"
)

const banner = `
   __ _      _     _
  / _(_) ___| | __| |___  ___ __ _ _ __
 | |_| |/ _ \ |/ _` + "`" + ` / __|/ __/ _` + "`" + ` | '_ \
 |  _| |  __/ | (_| \__ \ (_| (_| | | | |
 |_| |_|\___|_|\__,_|___/\___\__,_|_| |_|
`

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"menu"},
	Short:   "Pick files from the inputs directory in a menu loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		sopt, err := schemaOptions(nil)
		if err != nil {
			return err
		}
		ws := currentWorkspace()
		in := bufio.NewScanner(cmd.InOrStdin())
		w := cmd.OutOrStdout()
		for {
			fmt.Fprint(w, banner)
			files, err := ws.ListInputs()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(w, "⚠️ No files found in '%s' folder.\n", ws.InputsDir)
				return nil
			}
			fmt.Fprintln(w, "✅ Files available for analysis:")
			for i, f := range files {
				fmt.Fprintf(w, "%d. %s\n", i+1, f)
			}
			choice, ok := prompt(in, w, "Please enter the file number or 'q' to quit: ")
			if !ok || strings.EqualFold(choice, "q") {
				fmt.Fprintln(w, "✅ Goodbye ! 👋")
				return nil
			}
			n, err := strconv.Atoi(choice)
			if err != nil || n < 1 || n > len(files) {
				fmt.Fprintln(w, "❌ Invalid choice. Please try again.")
				continue
			}
			path := filepath.Join(ws.InputsDir, files[n-1])
			if _, err := analyzeFile(w, path, loader.Options{}, sopt, ws.OutputPath(path), true); err != nil {
				logger.WithError(err).WithField("file", path).Warn("analysis failed")
				fmt.Fprintf(w, "❌ Could not process file: %v\n", err)
			}
			again, ok := prompt(in, w, "Do you want to analyze another file? (y/n): ")
			if !ok || strings.ToLower(again) != "y" {
				fmt.Fprintln(w, "✅ Goodbye ! 👋")
				return nil
			}
		}
	},
}

// prompt writes msg and reads one trimmed line; ok is false at end of input.
func prompt(in *bufio.Scanner, w io.Writer, msg string) (string, bool) {
	fmt.Fprint(w, msg)
	if !in.Scan() {
		fmt.Fprintln(w)
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
