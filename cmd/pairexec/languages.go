package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:     "languages",
	Aliases: []string{"langs"},
	Short:   "Show supported languages and whether their toolchains are installed",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(nil)
		if err != nil {
			return err
		}
		infos := engine.Languages()

		if jsonFlag {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(infos)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tTOOLCHAIN\tCOMPILED\tAVAILABLE\tALIASES")
		for _, l := range infos {
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", l.Display, l.Toolchain, l.Compiled, l.Available, strings.Join(l.Aliases, ", "))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
