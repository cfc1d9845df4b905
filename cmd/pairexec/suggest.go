package main

import (
	"encoding/json"
	"fmt"
	"unicode/utf16"

	"github.com/spf13/cobra"

	"github.com/Harsh-BH/pairexec/internal/suggest"
)

var cursorFlag int

var suggestCmd = &cobra.Command{
	Use:   "suggest <file|->",
	Short: "List completions at a cursor position",
	Long: `List the completions the editor would show. --cursor is an offset in
UTF-16 code units; by default the cursor sits at the end of the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Language or alias")
	suggestCmd.Flags().IntVar(&cursorFlag, "cursor", -1, "Cursor offset in UTF-16 code units")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	lang, err := languageFor(args[0], langFlag)
	if err != nil {
		return err
	}
	code, err := readSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cursor := cursorFlag
	if cursor < 0 {
		cursor = len(utf16.Encode([]rune(code)))
	}

	items := suggest.New().Suggest(code, lang, cursor)

	if jsonFlag {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"suggestions": items})
	}
	for _, it := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-9s %s\n", it.Label, it.Kind, it.InsertText)
	}
	return nil
}
