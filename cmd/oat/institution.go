package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/openalex"
)

var (
	institutionAuthors bool
	institutionCap     int
	institutionMailto  string
)

func init() {
	institutionCmd.Flags().BoolVar(&institutionAuthors, "authors", false, "Also list the institution's author IDs (the affiliation allow-list)")
	institutionCmd.Flags().IntVar(&institutionCap, "cap", openalex.DefaultAuthorListCap, "Maximum author IDs to fetch")
	institutionCmd.Flags().StringVar(&institutionMailto, "mailto", "", "Contact email for the polite pool (overrides config)")
	rootCmd.AddCommand(institutionCmd)
}

var institutionCmd = &cobra.Command{
	Use:   "institution <name>",
	Short: "Look up an institution and optionally its author allow-list",
	Long: `Look up an institution by name, reporting the top-ranked match.

With --authors, the command also pages through every author whose last
known institution matches and lists their IDs. This is the allow-list
that 'works --affiliated' intersects author searches with; listing it
here helps gauge its size before a large export.

Examples:
  oat institution "Colorado State University"
  oat institution "Colorado State University" --authors --cap 500`,
	Args: cobra.ExactArgs(1),
	RunE: runInstitution,
}

// InstitutionResult reports an institution lookup, with the allow-list
// attached when requested.
type InstitutionResult struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	CountryCode string   `json:"country_code,omitempty"`
	Type        string   `json:"type,omitempty"`
	AuthorCount int      `json:"author_count,omitempty"`
	AuthorIDs   []string `json:"author_ids,omitempty"`
}

func runInstitution(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	log := newLogger()
	cfg := mustLoadConfig()
	client := newSearchClient(cfg, institutionMailto, log)

	name := strings.TrimSpace(args[0])
	inst, err := client.ResolveInstitution(ctx, name)
	if err != nil {
		fail(err)
	}

	result := InstitutionResult{
		ID:          inst.ID,
		DisplayName: inst.DisplayName,
		CountryCode: inst.CountryCode,
		Type:        inst.Type,
	}

	if institutionAuthors {
		ids, err := client.ListInstitutionAuthorIDs(ctx, inst.ID, institutionCap)
		if err != nil {
			fail(err)
		}
		result.AuthorCount = len(ids)
		result.AuthorIDs = ids
	}

	if humanOutput {
		fmt.Printf("%s\n", result.DisplayName)
		fmt.Printf("  ID:      %s\n", result.ID)
		if result.CountryCode != "" {
			fmt.Printf("  Country: %s\n", result.CountryCode)
		}
		if result.Type != "" {
			fmt.Printf("  Type:    %s\n", result.Type)
		}
		if institutionAuthors {
			fmt.Printf("  Authors: %d\n", result.AuthorCount)
			for _, id := range result.AuthorIDs {
				fmt.Printf("    %s\n", id)
			}
		}
		return nil
	}
	return outputJSON(result)
}
