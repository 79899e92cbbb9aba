package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/fields"
)

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the output fields accepted by --fields",
	Long: `List the output fields accepted by 'works --fields' and
'--exclude-fields': the core set exported by default, the extended
opt-in set, and the accepted aliases.`,
	Args: cobra.NoArgs,
	RunE: runFields,
}

// FieldsResult lists every accepted field name and alias.
type FieldsResult struct {
	Core     []string          `json:"core"`
	Extended []string          `json:"extended"`
	Aliases  map[string]string `json:"aliases"`
}

func runFields(cmd *cobra.Command, args []string) error {
	aliases := fields.Aliases()

	if humanOutput {
		fmt.Println("Core fields (exported by default):")
		for _, f := range fields.Core {
			fmt.Printf("  %s\n", f)
		}
		fmt.Println("\nExtended fields:")
		for _, f := range fields.Extended {
			fmt.Printf("  %s\n", f)
		}
		fmt.Println("\nAliases:")
		keys := make([]string, 0, len(aliases))
		for k := range aliases {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s -> %s\n", k, aliases[k])
		}
		return nil
	}
	return outputJSON(FieldsResult{
		Core:     fields.Core,
		Extended: fields.Extended,
		Aliases:  aliases,
	})
}
