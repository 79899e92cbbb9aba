package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/config"
	"github.com/oat-cli/oat/internal/export"
	"github.com/oat-cli/oat/internal/fields"
	"github.com/oat-cli/oat/internal/names"
	"github.com/oat-cli/oat/internal/openalex"
	"github.com/oat-cli/oat/internal/roster"
)

// affiliatedAuthorCap bounds the allow-list built for --affiliated. Campus
// rosters run well past the default listing cap.
const affiliatedAuthorCap = 5000

var (
	worksSearch        string
	worksAuthors       []string
	worksAuthorsFile   string
	worksDepartment    string
	worksJobTitle      string
	worksInstitution   string
	worksAffiliated    bool
	worksResolveNames  bool
	worksStrictNames   bool
	worksCollege       string
	worksDept          string
	worksSort          string
	worksFields        string
	worksExcludeFields string
	worksMax           int
	worksPerPage       int
	worksOutput        string
	worksMailto        string
	worksSkipUnmatched bool
)

func init() {
	worksCmd.Flags().StringVarP(&worksSearch, "search", "s", "", "Free-text search over titles, abstracts, and full text")
	worksCmd.Flags().StringArrayVarP(&worksAuthors, "author", "a", nil, "Author name, OpenAlex author ID, or ORCID (repeatable)")
	worksCmd.Flags().StringVar(&worksAuthorsFile, "authors-file", "", "Roster file with authors (CSV report, YAML, BibTeX, or name list)")
	worksCmd.Flags().StringVar(&worksDepartment, "department", "", "Keep only roster rows whose department contains this text")
	worksCmd.Flags().StringVar(&worksJobTitle, "job-title", "", "Keep only roster rows whose job title contains this text")
	worksCmd.Flags().StringVar(&worksInstitution, "institution", "", "Institution name (defaults to configured institution)")
	worksCmd.Flags().BoolVar(&worksAffiliated, "affiliated", false, "Restrict to authors currently affiliated with the institution")
	worksCmd.Flags().BoolVar(&worksResolveNames, "resolve-names", false, "Expand abbreviated roster names via web search first")
	worksCmd.Flags().BoolVar(&worksStrictNames, "strict-names", false, "Fail instead of degrading when no search backend is configured")
	worksCmd.Flags().StringVar(&worksCollege, "college", "", "College context for ad-hoc name resolution")
	worksCmd.Flags().StringVar(&worksDept, "dept", "", "Department context for ad-hoc name resolution")
	worksCmd.Flags().StringVar(&worksSort, "sort", "", "Sort order, e.g. cited_by_count:desc or publication_date")
	worksCmd.Flags().StringVar(&worksFields, "fields", "", "Comma-separated output fields (default: core set)")
	worksCmd.Flags().StringVar(&worksExcludeFields, "exclude-fields", "", "Comma-separated fields to drop from the output")
	worksCmd.Flags().IntVar(&worksMax, "max", openalex.DefaultMaxResults, "Maximum works to fetch (0 = all)")
	worksCmd.Flags().IntVar(&worksPerPage, "per-page", openalex.DefaultPerPage, "Results per request page (max 200)")
	worksCmd.Flags().StringVarP(&worksOutput, "output", "o", "", "Output file (default: stdout)")
	worksCmd.Flags().StringVar(&worksMailto, "mailto", "", "Contact email for the polite pool (overrides config)")
	worksCmd.Flags().BoolVar(&worksSkipUnmatched, "skip-unmatched", false, "Warn and continue when some author names have no match")
	rootCmd.AddCommand(worksCmd)
}

var worksCmd = &cobra.Command{
	Use:   "works",
	Short: "Search works and export them as a JSON document",
	Long: `Search OpenAlex works and export them as a JSON document with a
works array and a metadata block echoing the effective query.

Authors may be given as display names, OpenAlex author IDs (A123...), or
ORCIDs; names are resolved to author IDs through the API's top-ranked
match. Roster files supply authors in bulk: institutional compensation
report CSVs (filterable with --department / --job-title), YAML author
lists, or plain name lists.

With --affiliated, the search is restricted to authors whose last known
institution matches --institution (or the configured one). Explicitly
requested authors are intersected with that allow-list; without explicit
authors the allow-list itself becomes the author filter.

Examples:
  oat works -s "machine learning" --max 50
  oat works -a "Jane Smith" -a A5023888391 --fields id,title,citations
  oat works --authors-file report.csv --department "Soil and Crop" --affiliated
  oat works -s "rangeland ecology" --institution "Colorado State University" -o works.json`,
	Args: cobra.NoArgs,
	RunE: runWorks,
}

// authorInput is one requested author plus the roster context that
// sharpens an abbreviated-name search.
type authorInput struct {
	Name       string
	Department string
	College    string
}

func runWorks(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	log := newLogger()
	cfg := mustLoadConfig()
	client := newSearchClient(cfg, worksMailto, log)

	resolvedFields, err := fields.Resolve(splitCommaList(worksFields), splitCommaList(worksExcludeFields))
	if err != nil {
		fail(err)
	}

	inputs, err := gatherAuthorInputs()
	if err != nil {
		fail(err)
	}

	instName := worksInstitution
	if instName == "" {
		instName = cfg.Institution
	}

	if worksResolveNames {
		inputs = resolveAbbreviatedNames(ctx, cfg, instName, inputs, log)
	}

	authorNames := make([]string, 0, len(inputs))
	for _, in := range inputs {
		authorNames = append(authorNames, in.Name)
	}

	authorIDs, err := client.ResolveAuthorIDs(ctx, authorNames)
	if err != nil {
		if !worksSkipUnmatched || !errors.Is(err, openalex.ErrNoMatch) || len(authorIDs) == 0 {
			fail(err)
		}
		warn("%v", err)
	}

	// A configured institution is only a default for --affiliated and name
	// resolution; it does not silently scope every search.
	var instID string
	if worksAffiliated || worksInstitution != "" {
		if instName == "" {
			exitWithError(ExitDataError, "--affiliated needs an institution: pass --institution or set one with 'oat config institution'")
		}
		inst, err := client.ResolveInstitution(ctx, instName)
		if err != nil {
			fail(err)
		}
		instID = inst.ID
	}

	if worksAffiliated {
		allow, err := client.ListInstitutionAuthorIDs(ctx, instID, affiliatedAuthorCap)
		if err != nil {
			fail(err)
		}
		if len(authorIDs) > 0 {
			authorIDs = intersectIDs(authorIDs, allow)
		} else {
			authorIDs = allow
		}
		if len(authorIDs) == 0 {
			warn("no requested author is affiliated with %s; nothing to search", instName)
			return writeWorksDocument(nil, worksQueryEcho(authorNames, authorIDs, instName, instID, resolvedFields))
		}
	}

	q := openalex.WorkQuery{
		Search:     worksSearch,
		AuthorIDs:  authorIDs,
		Sort:       worksSort,
		PerPage:    worksPerPage,
		MaxResults: worksMax,
	}
	// The allow-list already pins the institution; a second filter on it
	// would only shrink results for authors with multiple affiliations.
	if instID != "" && !worksAffiliated {
		q.InstitutionID = instID
	}

	works, err := client.SearchWorks(ctx, q)
	if err != nil {
		fail(err)
	}

	formatter := export.NewFormatter(resolvedFields, authorIDs)
	records := make([]export.Record, 0, len(works))
	for i := range works {
		records = append(records, formatter.FormatWork(&works[i]))
	}

	if humanOutput && worksOutput == "" {
		printWorksHuman(works)
		return nil
	}
	return writeWorksDocument(records, worksQueryEcho(authorNames, authorIDs, instName, instID, resolvedFields))
}

// gatherAuthorInputs merges roster-file authors with --author flags.
func gatherAuthorInputs() ([]authorInput, error) {
	var inputs []authorInput

	if worksAuthorsFile != "" {
		entries, err := roster.Load(worksAuthorsFile, roster.Filter{
			Department: worksDepartment,
			JobTitle:   worksJobTitle,
		})
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", worksAuthorsFile, err)
		}
		for _, e := range entries {
			dept := e.Department
			if dept == "" {
				dept = worksDept
			}
			college := e.College
			if college == "" {
				college = worksCollege
			}
			inputs = append(inputs, authorInput{Name: e.Name, Department: dept, College: college})
		}
	}

	for _, name := range worksAuthors {
		inputs = append(inputs, authorInput{Name: name, Department: worksDept, College: worksCollege})
	}
	return inputs, nil
}

// resolveAbbreviatedNames expands abbreviated author names through the
// configured search backend. Resolution is best-effort: every name comes
// back, resolved or not.
func resolveAbbreviatedNames(ctx context.Context, cfg config.Config, instName string, inputs []authorInput, log zerolog.Logger) []authorInput {
	resolver, err := names.New(names.Config{
		APIKey:            tavilyKey(cfg),
		InstitutionDomain: cfg.InstitutionDomain,
		Strict:            worksStrictNames,
		Logger:            log,
	})
	if err != nil {
		exitWithError(ExitConfigError, "%v: set one with 'oat config tavily-key' or drop --strict-names", err)
	}

	out := make([]authorInput, len(inputs))
	for i, in := range inputs {
		res := resolver.Resolve(ctx, in.Name, names.Context{
			Institution: instName,
			Department:  in.Department,
			College:     in.College,
		})
		out[i] = in
		out[i].Name = res.Name
	}
	return out
}

// intersectIDs keeps the ids present in allow, preserving ids order.
func intersectIDs(ids, allow []string) []string {
	set := make(map[string]struct{}, len(allow))
	for _, id := range allow {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func worksQueryEcho(authorNames, authorIDs []string, instName, instID string, fieldList []string) export.QueryEcho {
	return export.QueryEcho{
		Search:         worksSearch,
		Authors:        authorNames,
		AuthorIDs:      authorIDs,
		Institution:    instName,
		InstitutionID:  instID,
		AffiliatedOnly: worksAffiliated,
		Sort:           worksSort,
		MaxResults:     worksMax,
		Fields:         fieldList,
	}
}

// writeWorksDocument writes the export document to --output or stdout.
func writeWorksDocument(records []export.Record, echo export.QueryEcho) error {
	doc := export.NewDocument(records, echo, time.Now())
	if err := doc.WriteFile(worksOutput); err != nil {
		fail(err)
	}
	if worksOutput != "" && worksOutput != "-" {
		if humanOutput {
			fmt.Printf("Wrote %d works to %s\n", len(doc.Works), worksOutput)
		} else {
			outputJSON(ExportStatus{Status: "written", Works: len(doc.Works), Path: worksOutput})
		}
	}
	return nil
}

// ExportStatus confirms a file export in JSON mode.
type ExportStatus struct {
	Status string `json:"status"`
	Works  int    `json:"works"`
	Path   string `json:"path"`
}

func printWorksHuman(works []openalex.Work) {
	if len(works) == 0 {
		fmt.Println("No works found")
		return
	}
	fmt.Printf("Found %d works:\n\n", len(works))
	for i, w := range works {
		title := "(untitled)"
		if w.Title != nil && *w.Title != "" {
			title = *w.Title
		}
		fmt.Printf("[%d] %s\n", i+1, w.ID)
		fmt.Printf("    %s\n", truncateString(title, WorkTitleMaxLen))
		line := ""
		if len(w.Authorships) > 0 {
			line = w.Authorships[0].Author.DisplayName
			if len(w.Authorships) > 1 {
				line += " et al."
			}
		}
		if w.PublicationYear != nil {
			if line != "" {
				line += " "
			}
			line += fmt.Sprintf("(%d)", *w.PublicationYear)
		}
		if line != "" {
			fmt.Printf("    %s\n", line)
		}
		if w.CitedByCount != nil {
			fmt.Printf("    cited by %d\n", *w.CitedByCount)
		}
		fmt.Println()
	}
}
