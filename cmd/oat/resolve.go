package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/names"
	"github.com/oat-cli/oat/internal/openalex"
	"github.com/oat-cli/oat/internal/roster"
)

var (
	resolveFile        string
	resolveInstitution string
	resolveCollege     string
	resolveDept        string
	resolveStrict      bool
	resolveMailto      string
)

func init() {
	resolveCmd.Flags().StringVar(&resolveFile, "file", "", "Roster file with names to resolve")
	resolveCmd.Flags().StringVar(&resolveInstitution, "institution", "", "Institution context (defaults to configured institution)")
	resolveCmd.Flags().StringVar(&resolveCollege, "college", "", "College context for the name search")
	resolveCmd.Flags().StringVar(&resolveDept, "dept", "", "Department context for the name search")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict-names", false, "Fail instead of degrading when no search backend is configured")
	resolveCmd.Flags().StringVar(&resolveMailto, "mailto", "", "Contact email for the polite pool (overrides config)")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [name]...",
	Short: "Preview name resolution and author lookup without fetching works",
	Long: `Preview how author inputs would resolve: abbreviated names are
expanded through the search backend when one is configured, then each
name is looked up against the OpenAlex author index and the top match
reported with its ID, display name, and ORCID.

Nothing is exported; use this to check a roster before running works.

Examples:
  oat resolve "E. Kelly" --dept "Soil and Crop Sciences"
  oat resolve --file report.csv --institution "Colorado State University"
  oat resolve A5023888391 "https://orcid.org/0000-0002-1825-0097"`,
	Args: cobra.ArbitraryArgs,
	RunE: runResolve,
}

// ResolveResult is one preview row: the input name, what the search
// backend made of it, and the author-index match if any.
type ResolveResult struct {
	Input        string           `json:"input"`
	ResolvedName string           `json:"resolved_name"`
	Resolved     bool             `json:"resolved"`
	Reason       string           `json:"reason,omitempty"`
	Author       *openalex.Author `json:"author"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	log := newLogger()
	cfg := mustLoadConfig()
	client := newSearchClient(cfg, resolveMailto, log)

	inputs := append([]string{}, args...)
	if resolveFile != "" {
		entries, err := roster.Load(resolveFile, roster.Filter{})
		if err != nil {
			fail(fmt.Errorf("reading %s: %w", resolveFile, err))
		}
		for _, e := range entries {
			inputs = append(inputs, e.Name)
		}
	}
	if len(inputs) == 0 {
		exitWithError(ExitDataError, "nothing to resolve: pass names as arguments or use --file")
	}

	instName := resolveInstitution
	if instName == "" {
		instName = cfg.Institution
	}

	resolver, err := names.New(names.Config{
		APIKey:            tavilyKey(cfg),
		InstitutionDomain: cfg.InstitutionDomain,
		Strict:            resolveStrict,
		Logger:            log,
	})
	if err != nil {
		exitWithError(ExitConfigError, "%v: set one with 'oat config tavily-key' or drop --strict-names", err)
	}

	rctx := names.Context{
		Institution: instName,
		Department:  resolveDept,
		College:     resolveCollege,
	}

	results := make([]ResolveResult, 0, len(inputs))
	for _, input := range inputs {
		row := ResolveResult{Input: input, ResolvedName: input}

		var author *openalex.Author
		if canonical, isID := openalex.CanonicalAuthorID(input); isID {
			row.ResolvedName = canonical
			author, err = client.GetAuthor(ctx, canonical)
		} else {
			res := resolver.Resolve(ctx, input, rctx)
			row.ResolvedName = res.Name
			row.Resolved = res.Resolved
			row.Reason = res.Reason
			author, err = client.LookupAuthor(ctx, row.ResolvedName)
		}
		switch {
		case errors.Is(err, openalex.ErrNoMatch):
			// No match is a reportable outcome here, not a failure.
		case err != nil:
			fail(err)
		default:
			row.Author = author
		}
		results = append(results, row)
	}

	if humanOutput {
		printResolveHuman(results)
		return nil
	}
	return outputJSON(results)
}

func printResolveHuman(results []ResolveResult) {
	for _, r := range results {
		if r.Resolved {
			fmt.Printf("%s -> %s\n", r.Input, r.ResolvedName)
		} else if r.Reason != "" {
			fmt.Printf("%s (%s)\n", r.Input, r.Reason)
		} else {
			fmt.Printf("%s\n", r.Input)
		}
		if r.Author == nil {
			fmt.Println("  no author match")
		} else {
			line := fmt.Sprintf("  %s  %s", r.Author.ID, r.Author.DisplayName)
			if r.Author.ORCID != "" {
				line += "  " + r.Author.ORCID
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
}
