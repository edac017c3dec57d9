package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/fieldscan/internal/loader"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the files in the inputs directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := currentWorkspace()
		files, err := ws.ListInputs()
		if err != nil {
			return err
		}
		if !listAll {
			files = supportedOnly(files)
		}
		w := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintf(w, "(no files in %s)\n", ws.InputsDir)
			return nil
		}
		for i, f := range files {
			fmt.Fprintf(w, "%d. %s\n", i+1, f)
		}
		return nil
	},
}

// supportedOnly keeps the names some loader can read.
func supportedOnly(files []string) []string {
	var out []string
	for _, f := range files {
		if _, err := loader.For(f); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include files no loader supports")
}
